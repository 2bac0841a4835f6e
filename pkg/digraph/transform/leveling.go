package transform

import "github.com/matzehuels/schematic/pkg/digraph"

type mark uint8

const (
	unvisited mark = iota
	inProgress
	done
)

// AssignLevels assigns each node the length of the longest reference chain
// below it and writes the result back with [digraph.Graph.SetLevels].
//
// A node's level is the maximum over its outgoing edges of the target's level
// plus one, or 0 when it has no outgoing edges. Each node is resolved once;
// later visits read the memoized value.
//
// # Cycles
//
// Revisiting a node that is still in progress contributes 0+1 for that edge
// instead of recursing. For users -> teams -> users visited from users, teams
// resolves to 1 and users to 2.
//
// # Determinism
//
// Roots are visited in insertion order and children in edge order, so a fixed
// input order always produces the same levels. The result is not guaranteed to
// be minimal when cycles are present.
//
// The returned map holds the level of every node.
func AssignLevels(g *digraph.Graph) map[string]int {
	ids := g.IDs()
	marks := make(map[string]mark, len(ids))
	levels := make(map[string]int, len(ids))

	var visit func(id string) int
	visit = func(id string) int {
		switch marks[id] {
		case done:
			return levels[id]
		case inProgress:
			return 0
		}
		marks[id] = inProgress

		level := 0
		for _, child := range g.Children(id) {
			if l := visit(child) + 1; l > level {
				level = l
			}
		}

		marks[id] = done
		levels[id] = level
		return level
	}

	for _, id := range ids {
		visit(id)
	}

	g.SetLevels(levels)
	return levels
}
