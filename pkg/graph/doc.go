// Package graph provides serialization types for reference graphs and
// diagram layouts.
//
// This package defines the wire format for schematic's graph data, used for
// JSON files, HTTP responses, caching and document stores.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: serialization types (this package)
//   - digraph.Graph: internal reference graph
//   - schematic.Layout: internal positioned layout
//
// Use [FromDigraph]/[ToDigraph] and [FromLayout]/[Layout.Schematic] to
// convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format with labeled edges:
//
//	{
//	  "nodes": [{"id": "users"}, {"id": "orders", "level": 1}],
//	  "edges": [{"from": "orders", "to": "users", "label": "owner"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("refs.json")   // File → digraph
//	graph.WriteGraphFile(g, "refs.json")       // digraph → File
//
// # Layout Serialization
//
// Layouts are discriminated by VizType:
//
//	layout, _ := graph.UnmarshalLayout(data)
//	if layout.IsSchematic() {
//	    // Use layout.Cards for positioned collection cards
//	} else {
//	    // Use layout.DOT for Graphviz rendering
//	}
//
// A schematic layout carries each card's fields, so [Layout.Schematic] can
// rebuild a renderable layout without the original collection source.
package graph
