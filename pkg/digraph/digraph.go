package digraph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
// Metadata maps are never nil after AddNode.
type Metadata map[string]any

// Node is a vertex with an assigned level.
//
// Level 0 holds collections that reference nothing; a collection's level grows
// with the depth of what it references.
type Node struct {
	ID    string
	Level int
	Meta  Metadata
}

// Edge is a directed, labeled connection. Parallel edges between the same pair
// are allowed and kept distinct by Label.
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is a directed multigraph with insertion-ordered nodes and a level
// index. Cycles are permitted.
//
// The zero value is not usable - use New to create a valid Graph.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> target IDs, one per edge
	incoming map[string][]string // nodeID -> source IDs, one per edge
	levels   map[int][]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		levels:   make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by its Level.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if a node
// with the same ID already exists.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	g.levels[node.Level] = append(g.levels[node.Level], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing. Self-loops are accepted here; callers that do not want them filter
// before adding.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// SetLevels updates level assignments and rebuilds the level index.
// Nodes not present in levels keep their current level. Within a level,
// nodes stay in insertion order.
func (g *Graph) SetLevels(levels map[string]int) {
	g.levels = make(map[int][]*Node)
	for _, id := range g.order {
		n := g.nodes[id]
		if lvl, ok := levels[id]; ok {
			n.Level = lvl
		}
		g.levels[n.Level] = append(g.levels[n.Level], n)
	}
}

// Nodes returns all nodes in insertion order. The returned pointers refer to
// the graph's nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// IDs returns all node IDs in insertion order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, counting parallel edges separately.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Children returns the targets of id's outgoing edges, one entry per edge.
// The returned slice must not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the sources of id's incoming edges, one entry per edge.
// The returned slice must not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Degree returns the number of distinct nodes id references plus the number
// of distinct nodes referencing it. Parallel edges count once.
func (g *Graph) Degree(id string) int {
	return distinct(g.outgoing[id]) + distinct(g.incoming[id])
}

func distinct(ids []string) int {
	if len(ids) < 2 {
		return len(ids)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// NodesInLevel returns the nodes assigned to level in insertion order.
func (g *Graph) NodesInLevel(level int) []*Node { return g.levels[level] }

// LevelIDs returns all occupied levels in ascending order.
func (g *Graph) LevelIDs() []int {
	return slices.Sorted(maps.Keys(g.levels))
}

// MaxLevel returns the highest occupied level, or 0 for an empty graph.
func (g *Graph) MaxLevel() int {
	ids := g.LevelIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			sinks = append(sinks, g.nodes[id])
		}
	}
	return sinks
}

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// HasCycle reports whether the graph contains a directed cycle, using
// depth-first search with white/gray/black coloring.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var found bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				found = true
			}
			if found {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if found {
				return true
			}
		}
	}
	return false
}
