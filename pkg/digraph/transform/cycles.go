package transform

import "github.com/matzehuels/schematic/pkg/digraph"

// FindCycleEdges returns the edges that close a cycle during a depth-first
// traversal started from each node in insertion order. Removing them would
// make the graph acyclic. The graph is not modified.
//
// Parallel edges between the same pair are reported once per edge, with
// their labels, so callers can name the offending fields.
func FindCycleEdges(g *digraph.Graph) []digraph.Edge {
	const (
		white = iota
		gray
		black
	)

	byFrom := make(map[string][]digraph.Edge)
	for _, e := range g.Edges() {
		byFrom[e.From] = append(byFrom[e.From], e)
	}

	color := make(map[string]int, g.NodeCount())
	var back []digraph.Edge

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, e := range byFrom[id] {
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				back = append(back, e)
			}
		}
		color[id] = black
	}

	for _, id := range g.IDs() {
		if color[id] == white {
			dfs(id)
		}
	}
	return back
}
