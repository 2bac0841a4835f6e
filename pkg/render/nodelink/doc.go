// Package nodelink renders the collection reference graph as a traditional
// node-link diagram with Graphviz.
//
// # Overview
//
// Where the schematic grid places cards by reference depth on a fixed grid,
// this package hands the same graph to Graphviz's dot layout. Levels are kept
// as ranks, so leaf collections still line up at the top.
//
// # Usage
//
// Convert a layout to DOT, then render to SVG:
//
//	l := schematic.Compute(collections, schematic.DefaultOptions())
//	dot := nodelink.ToDOT(l, nodelink.Options{EdgeLabels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels list every field with its type
//   - EdgeLabels: edges carry the name of the referencing field
//
// Edges that close a reference cycle are drawn dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz install is needed.
package nodelink
