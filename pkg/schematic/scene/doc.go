// Package scene composes a [schematic.Diagram] into drawable primitives.
//
// [Build] reads the diagram's layout and viewport and produces a [Scene]
// entirely in screen coordinates: one [Box] per collection card, one [Arrow]
// per reference edge, and an [Overlay] holding the zoom controls, the zoom
// indicator, the legend and, when there is nothing to show, the empty-state
// message. [Draw] then replays the scene onto any [Canvas].
//
// Canvases only ever see these three primitives. The SVG writer, the
// terminal rasterizer and the interactive viewer are all Canvas
// implementations, so what they show stays identical.
package scene
