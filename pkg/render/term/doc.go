// Package term rasterizes a [scene.Scene] onto a character grid.
//
// Each cell covers CellWidth x CellHeight screen pixels, so the same scene
// that produces an SVG also produces a terminal frame, and a mouse position
// in cells maps straight back to screen pixels with [Grid.ToScreen]. Cards
// become box-drawing rectangles, edges become dotted lines ending in an arrow
// head at the referenced card, and the overlay sits in the corners.
//
// Styling uses lipgloss; [WithPlain] turns it off for golden output.
//
// [scene.Scene]: github.com/matzehuels/schematic/pkg/schematic/scene
package term
