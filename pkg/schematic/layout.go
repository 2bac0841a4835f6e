package schematic

import (
	"cmp"
	"slices"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/digraph"
	"github.com/matzehuels/schematic/pkg/digraph/transform"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Default grid dimensions in world units.
const (
	DefaultNodeWidth     = 300.0
	DefaultNodeHeight    = 200.0
	DefaultHorizontalGap = 70.0
	DefaultLevelHeight   = 350.0
	DefaultTopMargin     = 100.0
	DefaultLeftMargin    = 100.0
)

// Options controls the layout grid. Zero fields take their defaults.
type Options struct {
	NodeWidth     float64 `json:"nodeWidth" toml:"node_width"`
	NodeHeight    float64 `json:"nodeHeight" toml:"node_height"`
	HorizontalGap float64 `json:"horizontalGap" toml:"horizontal_gap"`
	LevelHeight   float64 `json:"levelHeight" toml:"level_height"`
	TopMargin     float64 `json:"topMargin" toml:"top_margin"`
	LeftMargin    float64 `json:"leftMargin" toml:"left_margin"`
}

// DefaultOptions returns the standard 300x200 card grid.
func DefaultOptions() Options {
	return Options{
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
		HorizontalGap: DefaultHorizontalGap,
		LevelHeight:   DefaultLevelHeight,
		TopMargin:     DefaultTopMargin,
		LeftMargin:    DefaultLeftMargin,
	}
}

// WithDefaults fills zero or negative fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.HorizontalGap <= 0 {
		o.HorizontalGap = d.HorizontalGap
	}
	if o.LevelHeight <= 0 {
		o.LevelHeight = d.LevelHeight
	}
	if o.TopMargin <= 0 {
		o.TopMargin = d.TopMargin
	}
	if o.LeftMargin <= 0 {
		o.LeftMargin = d.LeftMargin
	}
	return o
}

// GraphNode is a collection placed on the diagram.
type GraphNode struct {
	Collection collection.Collection `json:"collection"`
	Level      int                   `json:"level"`
	// Index is the node's position within its level, left to right.
	Index    int            `json:"index"`
	Degree   int            `json:"degree"`
	Position viewport.Point `json:"position"`
}

// ID returns the collection ID.
func (n GraphNode) ID() string { return n.Collection.ID }

// Layout is a fully positioned diagram.
type Layout struct {
	Nodes      []GraphNode  `json:"nodes"`
	Edges      []Edge       `json:"edges"`
	Unresolved []Unresolved `json:"unresolved,omitempty"`
	// CycleEdges lists the edges that close reference cycles. They are still
	// part of Edges.
	CycleEdges []Edge  `json:"cycleEdges,omitempty"`
	Levels     int     `json:"levels"`
	Options    Options `json:"options"`
	index      map[string]int
}

// Node returns the node for a collection ID.
func (l Layout) Node(id string) (GraphNode, bool) {
	if l.index == nil {
		for _, n := range l.Nodes {
			if n.ID() == id {
				return n, true
			}
		}
		return GraphNode{}, false
	}
	i, ok := l.index[id]
	if !ok {
		return GraphNode{}, false
	}
	return l.Nodes[i], true
}

// Rect returns a node's card in world coordinates.
func (l Layout) Rect(n GraphNode) viewport.Rect {
	return viewport.Rect{X: n.Position.X, Y: n.Position.Y, W: l.Options.NodeWidth, H: l.Options.NodeHeight}
}

// Rects returns every card in node order.
func (l Layout) Rects() []viewport.Rect {
	rects := make([]viewport.Rect, len(l.Nodes))
	for i, n := range l.Nodes {
		rects[i] = l.Rect(n)
	}
	return rects
}

// Bounds returns the world rectangle covering all cards.
func (l Layout) Bounds() (viewport.Rect, bool) { return viewport.Bounds(l.Rects()) }

// Empty reports whether there is nothing to draw.
func (l Layout) Empty() bool { return len(l.Nodes) == 0 }

// BuildGraph creates the reference graph. Collections with an empty or
// repeated ID are dropped; edges whose endpoints were dropped are skipped.
func BuildGraph(cs []collection.Collection, edges []Edge) *digraph.Graph {
	g := digraph.New()
	for _, c := range collection.Dedupe(cs) {
		_ = g.AddNode(digraph.Node{ID: c.ID, Meta: digraph.Metadata{"name": c.Name}})
	}
	for _, e := range edges {
		_ = g.AddEdge(digraph.Edge{From: e.From, To: e.To, Label: e.Label})
	}
	return g
}

// Compute extracts references, levels the graph and lays it out.
func Compute(cs []collection.Collection, opts Options) Layout {
	cs = collection.Dedupe(cs)
	edges, unresolved := Extract(cs)
	g := BuildGraph(cs, edges)
	transform.AssignLevels(g)

	l := ComputeLayout(g, cs, opts)
	l.Edges = edges
	l.Unresolved = unresolved
	for _, e := range transform.FindCycleEdges(g) {
		l.CycleEdges = append(l.CycleEdges, Edge{From: e.From, To: e.To, Label: e.Label})
	}
	return l
}

// ComputeLayout positions the leveled nodes of g on the grid. Each level
// becomes a row at TopMargin + level*LevelHeight. Within a row nodes are
// ordered by descending degree, ties kept in insertion order, and spaced
// NodeWidth+HorizontalGap apart from LeftMargin.
//
// cs supplies the collection for each node; nodes without one get an empty
// collection carrying just the ID.
func ComputeLayout(g *digraph.Graph, cs []collection.Collection, opts Options) Layout {
	opts = opts.WithDefaults()
	byID := make(map[string]collection.Collection, len(cs))
	for _, c := range cs {
		if _, seen := byID[c.ID]; !seen {
			byID[c.ID] = c
		}
	}

	l := Layout{Options: opts, index: make(map[string]int, g.NodeCount())}
	pitch := opts.NodeWidth + opts.HorizontalGap

	for _, level := range g.LevelIDs() {
		row := slices.Clone(g.NodesInLevel(level))
		slices.SortStableFunc(row, func(a, b *digraph.Node) int {
			return cmp.Compare(g.Degree(b.ID), g.Degree(a.ID))
		})

		y := opts.TopMargin + float64(level)*opts.LevelHeight
		for i, n := range row {
			c, ok := byID[n.ID]
			if !ok {
				c = collection.Collection{ID: n.ID}
			}
			l.index[n.ID] = len(l.Nodes)
			l.Nodes = append(l.Nodes, GraphNode{
				Collection: c,
				Level:      level,
				Index:      i,
				Degree:     g.Degree(n.ID),
				Position:   viewport.Point{X: opts.LeftMargin + float64(i)*pitch, Y: y},
			})
		}
		l.Levels = max(l.Levels, level+1)
	}
	return l
}
