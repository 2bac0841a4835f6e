package interact

import (
	"time"

	"github.com/matzehuels/schematic/pkg/observability"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

const (
	DefaultDragThreshold = 5.0
	DefaultGrace         = 100 * time.Millisecond
)

// State is the machine's pointer state.
type State int

const (
	Idle State = iota
	Panning
)

func (s State) String() string {
	if s == Panning {
		return "panning"
	}
	return "idle"
}

// Config tunes drag detection.
type Config struct {
	// DragThreshold is the pan distance in screen pixels beyond which a
	// press-and-release counts as a drag.
	DragThreshold float64
	// Grace is how long the drag latch stays set after release.
	Grace time.Duration
}

// DefaultConfig returns a 5px threshold with a 100ms grace window.
func DefaultConfig() Config {
	return Config{DragThreshold: DefaultDragThreshold, Grace: DefaultGrace}
}

// Navigate is the intent produced by a genuine click on a node.
type Navigate struct {
	RouteKey string `json:"routeKey"`
}

// Path returns the console route for the collection.
func (n Navigate) Path() string { return "/collections/" + n.RouteKey }

// Machine drives a viewport from pointer input.
type Machine struct {
	cfg Config
	vp  *viewport.Viewport

	state         State
	originPointer viewport.Point
	originPan     viewport.Point
	moved         bool
	releasedAt    time.Time
}

// New returns an idle machine that mutates vp. Zero config fields take their
// defaults.
func New(vp *viewport.Viewport, cfg Config) *Machine {
	if cfg.DragThreshold <= 0 {
		cfg.DragThreshold = DefaultDragThreshold
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	return &Machine{cfg: cfg, vp: vp}
}

// State returns the current pointer state.
func (m *Machine) State() State { return m.state }

// Viewport returns the viewport the machine drives.
func (m *Machine) Viewport() *viewport.Viewport { return m.vp }

// PointerDown starts a pan. It is ignored unless the machine is idle.
func (m *Machine) PointerDown(p viewport.Point) {
	if m.state != Idle {
		return
	}
	m.state = Panning
	m.originPointer = p
	m.originPan = m.vp.Pan
	m.moved = false
}

// PointerMove updates the pan while panning and sets the drag latch once the
// pan has travelled further than the threshold from where the drag began.
func (m *Machine) PointerMove(p viewport.Point) {
	if m.state != Panning {
		return
	}
	m.vp.Pan = m.originPan.Add(p.Sub(m.originPointer))
	if m.vp.Pan.Dist(m.originPan) > m.cfg.DragThreshold {
		m.moved = true
	}
}

// PointerUp ends a pan at time t. The drag latch stays readable until
// t+Grace.
func (m *Machine) PointerUp(t time.Time) {
	if m.state != Panning {
		return
	}
	m.state = Idle
	m.releasedAt = t
}

// PointerLeave ends a pan when the pointer leaves the canvas.
func (m *Machine) PointerLeave(t time.Time) { m.PointerUp(t) }

// Moved reports whether the drag latch is set at time t.
func (m *Machine) Moved(t time.Time) bool {
	if !m.moved {
		return false
	}
	if m.state == Panning {
		return true
	}
	return t.Sub(m.releasedAt) < m.cfg.Grace
}

// Click handles a click on the node with the given route key at time t. It
// returns the navigation intent, or false when the click ended a drag.
func (m *Machine) Click(routeKey string, t time.Time) (Navigate, bool) {
	if m.Moved(t) {
		observability.Interaction().OnClickSuppressed()
		return Navigate{}, false
	}
	observability.Interaction().OnNavigate(routeKey)
	return Navigate{RouteKey: routeKey}, true
}

// Wheel zooms at p. Positive deltaY (scroll down, away from the user) zooms
// out by 0.9; anything else zooms in by 1.1.
func (m *Machine) Wheel(p viewport.Point, deltaY float64) {
	factor := viewport.WheelInFactor
	if deltaY > 0 {
		factor = viewport.WheelOutFactor
	}
	from := m.vp.Zoom
	m.vp.ZoomAt(p, factor)
	if m.vp.Zoom != from {
		observability.Interaction().OnZoom(from, m.vp.Zoom)
	}
}
