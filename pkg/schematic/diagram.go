package schematic

import (
	"time"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/schematic/interact"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// DefaultScreen is the canvas size used when none is configured.
var DefaultScreen = viewport.Size{W: 1280, H: 800}

// Config bundles everything a Diagram needs besides its collections.
type Config struct {
	Layout      Options
	Limits      viewport.Limits
	FitMargin   float64
	Interaction interact.Config
	Screen      viewport.Size
	// Now is the clock used for events without a timestamp.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	c.Layout = c.Layout.WithDefaults()
	if c.FitMargin <= 0 {
		c.FitMargin = viewport.DefaultFitMargin
	}
	if c.Screen.W <= 0 || c.Screen.H <= 0 {
		c.Screen = DefaultScreen
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// DefaultConfig returns the standard grid, zoom limits, fit margin and drag
// settings on a 1280x800 canvas.
func DefaultConfig() Config {
	return Config{
		Layout:      DefaultOptions(),
		Limits:      viewport.DefaultLimits(),
		FitMargin:   viewport.DefaultFitMargin,
		Interaction: interact.DefaultConfig(),
		Screen:      DefaultScreen,
	}.withDefaults()
}

// Diagram is an interactive schema diagram: a layout, the viewport showing
// it, and the input machine driving the viewport.
//
// A Diagram is not safe for concurrent use.
type Diagram struct {
	cfg         Config
	collections []collection.Collection
	layout      Layout
	vp          *viewport.Viewport
	input       *interact.Machine
}

// NewDiagram lays out cs and fits the viewport to it.
func NewDiagram(cs []collection.Collection, cfg Config) *Diagram {
	cfg = cfg.withDefaults()
	vp := viewport.New(cfg.Limits)
	d := &Diagram{
		cfg:   cfg,
		vp:    vp,
		input: interact.New(vp, cfg.Interaction),
	}
	d.Rebuild(cs)
	return d
}

// NewDiagramFromLayout wraps a precomputed layout, such as one read back
// from a layout document. The viewport is fitted to it. Relayout recomputes
// from the collections carried by the layout's nodes.
func NewDiagramFromLayout(l Layout, cfg Config) *Diagram {
	cfg = cfg.withDefaults()
	vp := viewport.New(cfg.Limits)
	d := &Diagram{
		cfg:    cfg,
		layout: l,
		vp:     vp,
		input:  interact.New(vp, cfg.Interaction),
	}
	d.collections = make([]collection.Collection, len(l.Nodes))
	for i, n := range l.Nodes {
		d.collections[i] = n.Collection
	}
	d.Fit()
	return d
}

// Rebuild replaces the collection set, recomputes the layout from scratch
// and refits the viewport. The new layout replaces the old one in a single
// assignment once it is computed. Diagram is not safe for concurrent use, so
// callers sharing one must serialize Rebuild with reads.
func (d *Diagram) Rebuild(cs []collection.Collection) {
	d.collections = cs
	d.Relayout()
}

// Relayout recomputes the layout from the current collections and refits.
func (d *Diagram) Relayout() {
	d.layout = Compute(d.collections, d.cfg.Layout)
	d.Fit()
}

// Fit zooms and pans so the whole layout is visible.
func (d *Diagram) Fit() {
	d.vp.FitToContent(d.layout.Rects(), d.cfg.Screen, d.cfg.FitMargin)
}

// Reset returns the viewport to 100% with no pan.
func (d *Diagram) Reset() { d.vp.Reset() }

// ZoomIn zooms in around the canvas center.
func (d *Diagram) ZoomIn() { d.vp.ZoomIn(d.cfg.Screen) }

// ZoomOut zooms out around the canvas center.
func (d *Diagram) ZoomOut() { d.vp.ZoomOut(d.cfg.Screen) }

// Resize changes the canvas size. The viewport is left untouched.
func (d *Diagram) Resize(s viewport.Size) {
	if s.W > 0 && s.H > 0 {
		d.cfg.Screen = s
	}
}

func (d *Diagram) Layout() Layout                       { return d.layout }
func (d *Diagram) Collections() []collection.Collection { return d.collections }
func (d *Diagram) Viewport() *viewport.Viewport         { return d.vp }
func (d *Diagram) Input() *interact.Machine             { return d.input }
func (d *Diagram) Screen() viewport.Size                { return d.cfg.Screen }
func (d *Diagram) Config() Config                       { return d.cfg }

// ScreenRect returns a node's card in screen coordinates.
func (d *Diagram) ScreenRect(n GraphNode) viewport.Rect {
	return d.vp.RectToScreen(d.layout.Rect(n))
}

// NodeAt returns the node whose card contains the screen point p. Later
// nodes are drawn on top, so they win when cards overlap.
func (d *Diagram) NodeAt(p viewport.Point) (GraphNode, bool) {
	w := d.vp.ToWorld(p)
	for i := len(d.layout.Nodes) - 1; i >= 0; i-- {
		n := d.layout.Nodes[i]
		if d.layout.Rect(n).Contains(w) {
			return n, true
		}
	}
	return GraphNode{}, false
}

// Click handles a click at screen point p. It returns a navigation intent
// when p is on a node and the click did not end a drag.
func (d *Diagram) Click(p viewport.Point, t time.Time) (interact.Navigate, bool) {
	n, ok := d.NodeAt(p)
	if !ok {
		return interact.Navigate{}, false
	}
	return d.input.Click(n.Collection.RouteKey(), t)
}

// Handle applies an input event or view command. Events without a time use
// the configured clock.
func (d *Diagram) Handle(ev interact.Event) (interact.Navigate, bool) {
	t := ev.Time
	if t.IsZero() {
		t = d.cfg.Now()
	}
	switch ev.Kind {
	case interact.KindPointerDown:
		d.input.PointerDown(ev.Point())
	case interact.KindPointerMove:
		d.input.PointerMove(ev.Point())
	case interact.KindPointerUp:
		d.input.PointerUp(t)
	case interact.KindPointerLeave:
		d.input.PointerLeave(t)
	case interact.KindWheel:
		d.input.Wheel(ev.Point(), ev.DeltaY)
	case interact.KindClick:
		return d.Click(ev.Point(), t)
	case interact.KindZoomIn:
		d.ZoomIn()
	case interact.KindZoomOut:
		d.ZoomOut()
	case interact.KindReset:
		d.Reset()
	case interact.KindFit:
		d.Fit()
	case interact.KindRelayout:
		d.Relayout()
	}
	return interact.Navigate{}, false
}

// State is a serializable snapshot of a diagram's view.
type State struct {
	Zoom        float64        `json:"zoom"`
	ZoomPercent int            `json:"zoomPercent"`
	Pan         viewport.Point `json:"pan"`
	Screen      viewport.Size  `json:"screen"`
	Interaction string         `json:"interaction"`
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	Levels      int            `json:"levels"`
}

// State returns the current view snapshot.
func (d *Diagram) State() State {
	return State{
		Zoom:        d.vp.Zoom,
		ZoomPercent: d.vp.Percent(),
		Pan:         d.vp.Pan,
		Screen:      d.cfg.Screen,
		Interaction: d.input.State().String(),
		Nodes:       len(d.layout.Nodes),
		Edges:       len(d.layout.Edges),
		Levels:      d.layout.Levels,
	}
}
