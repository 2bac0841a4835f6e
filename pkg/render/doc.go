// Package render turns schema diagrams into output formats.
//
// # Overview
//
// Rendering is split by sink, each in its own subpackage:
//
//   - [svg]: standalone SVG of the current viewport, drawn from a
//     [scene.Scene]
//   - [term]: the same scene rasterized onto a character grid for terminals
//   - [nodelink]: Graphviz DOT of the reference graph, and Graphviz-rendered
//     SVG via go-graphviz
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	doc := svg.Render(scene.Build(d))
//	pdf, err := render.ToPDF(ctx, doc)
//	png, err := render.ToPNG(ctx, doc, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/schematic/pkg/render/svg
// [term]: github.com/matzehuels/schematic/pkg/render/term
// [nodelink]: github.com/matzehuels/schematic/pkg/render/nodelink
// [scene.Scene]: github.com/matzehuels/schematic/pkg/schematic/scene
package render
