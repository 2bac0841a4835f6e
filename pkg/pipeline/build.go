package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/graph"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// =============================================================================
// Diagram Construction
// =============================================================================

// NewDiagram lays out cs and applies the view options. Options must already
// carry defaults (see [Options.ValidateForBuild]).
func NewDiagram(cs []collection.Collection, opts Options) *schematic.Diagram {
	d := schematic.NewDiagram(cs, opts.Config())
	applyView(d, opts)
	return d
}

// DiagramFromLayout rebuilds a diagram from a layout document. The viewport
// stored in the document is used unless opts set a zoom of their own.
func DiagramFromLayout(gl graph.Layout, opts Options) (*schematic.Diagram, error) {
	l, err := gl.Schematic()
	if err != nil {
		return nil, err
	}
	d := schematic.NewDiagramFromLayout(l, opts.Config())
	if opts.Zoom == 0 && gl.Viewport != nil && gl.Viewport.Zoom > 0 {
		opts.Zoom, opts.PanX, opts.PanY = gl.Viewport.Zoom, gl.Viewport.PanX, gl.Viewport.PanY
	}
	applyView(d, opts)
	return d, nil
}

// applyView replaces the fitted viewport with an explicit one.
func applyView(d *schematic.Diagram, opts Options) {
	if opts.Zoom <= 0 {
		return
	}
	vp := d.Viewport()
	vp.Zoom = vp.Limits.Clamp(opts.Zoom)
	vp.Pan = viewport.Point{X: opts.PanX, Y: opts.PanY}
}

// logLayout reports references that produced no edge and edges that close
// cycles. Neither is an error.
func logLayout(logger *log.Logger, l schematic.Layout) {
	for _, u := range l.Unresolved {
		logger.Debug("unresolved reference",
			"collection", u.Collection,
			"field", u.Field,
			"value", u.Value,
			"self", u.Self)
	}
	for _, e := range l.CycleEdges {
		logger.Debug("reference cycle", "from", e.From, "to", e.To, "field", e.Label)
	}
}
