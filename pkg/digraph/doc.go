// Package digraph provides the directed multigraph that backs schema
// relationship diagrams.
//
// # Overview
//
// Each node is a collection and each edge is one reference field pointing
// from the referencing collection to the referenced one. Unlike a dependency
// DAG, schema graphs are routinely cyclic (users reference orders, orders
// reference users) and carry parallel edges (an order's buyer and seller both
// reference users), so the graph accepts both.
//
// # Basic Usage
//
//	g := digraph.New()
//	g.AddNode(digraph.Node{ID: "c1"})
//	g.AddNode(digraph.Node{ID: "c2"})
//	g.AddEdge(digraph.Edge{From: "c2", To: "c1", Label: "owner"})
//
// Query the structure with [Graph.Children], [Graph.Parents],
// [Graph.Degree], and [Graph.NodesInLevel]. Levels are assigned by
// pkg/digraph/transform.
//
// # Ordering
//
// Nodes are returned in insertion order and edges in the order they were
// added. Layout tie-breaks depend on this, so callers that need reproducible
// diagrams must insert nodes in a stable order.
//
// # Concurrency
//
// Graph is not safe for concurrent use without external synchronization.
package digraph
