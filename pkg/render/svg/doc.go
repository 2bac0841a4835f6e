// Package svg draws a [scene.Scene] as a standalone SVG document.
//
// The document is exactly the size of the scene's canvas and shows what the
// viewport currently shows: cards are clipped by the canvas edges, and the
// overlay (zoom controls, zoom indicator, legend) stays fixed in the corners.
//
//	doc := svg.Render(scene.Build(d), svg.WithLinks("/collections/"))
//
// Edges are drawn as dashed lines over a wider solid underlay, with an
// arrowhead at the referenced card and a label pill at the midpoint.
//
// [scene.Scene]: github.com/matzehuels/schematic/pkg/schematic/scene
package svg
