package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/matzehuels/schematic/pkg/digraph"
)

// =============================================================================
// Constants
// =============================================================================

// Visualization types.
const (
	VizTypeSchematic = "schematic"
	VizTypeNodelink  = "nodelink"
)

// Internal metadata keys for serialization.
const (
	metaLabel = "_label" // Stores display label for round-trip fidelity
	metaName  = "name"   // Collection resource name
)

// =============================================================================
// Graph - Reference Graph Serialization
// =============================================================================

// Graph is the serialization format for collection reference graphs.
//
// Nodes keep the graph's insertion order: leveling visits roots in that
// order, so reordering would change the layout of cyclic schemas.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node
// =============================================================================

// Node is the node type shared by Graph and Layout.
type Node struct {
	ID    string         `json:"id" bson:"id"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Name  string         `json:"name,omitempty" bson:"name,omitempty"`   // Collection resource name
	Level int            `json:"level,omitempty" bson:"level,omitempty"`
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Reference
// =============================================================================

// Edge is a reference from one collection to another through a field.
type Edge struct {
	From  string `json:"from" bson:"from"`
	To    string `json:"to" bson:"to"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
	Cycle bool   `json:"cycle,omitempty" bson:"cycle,omitempty"`
}

// =============================================================================
// digraph ↔ Graph Conversion
// =============================================================================

// FromDigraph converts a reference graph to its serialization format.
func FromDigraph(g *digraph.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, nodeFromDigraph(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Label: e.Label})
	}
	return out
}

// ToDigraph converts a Graph back to a reference graph.
// Returns an error for empty or duplicate IDs and dangling edges.
func ToDigraph(gj Graph) (*digraph.Graph, error) {
	g := digraph.New()

	for _, nj := range gj.Nodes {
		n := digraph.Node{ID: nj.ID, Level: nj.Level, Meta: digraph.Metadata{}}
		maps.Copy(n.Meta, nj.Meta)
		if nj.Label != "" {
			n.Meta[metaLabel] = nj.Label
		}
		if nj.Name != "" {
			n.Meta[metaName] = nj.Name
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if err := g.AddEdge(digraph.Edge{From: ej.From, To: ej.To, Label: ej.Label}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	return g, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromDigraph(n *digraph.Node) Node {
	node := Node{ID: n.ID, Level: n.Level}
	if label, ok := n.Meta[metaLabel].(string); ok {
		node.Label = label
	}
	if name, ok := n.Meta[metaName].(string); ok {
		node.Name = name
	}
	node.Meta = cleanMeta(n.Meta)
	return node
}

// cleanMeta returns a copy of metadata without the keys promoted to Node
// fields. Returns nil if the result would be empty.
func cleanMeta(m map[string]any) map[string]any {
	var out map[string]any
	for k, v := range m {
		if k == metaLabel || k == metaName {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}
