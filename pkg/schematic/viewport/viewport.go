// Package viewport maps world coordinates of a laid-out diagram to screen
// coordinates and back.
//
// The mapping is the affine transform
//
//	screen = pan + zoom * world
//
// applied identically to nodes and edges. Zoom is kept inside [Limits] so the
// transform is always invertible.
package viewport

// Zoom bounds and step factors.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 3.0

	// DefaultFitMargin is the world-space padding added around content by
	// FitToContent.
	DefaultFitMargin = 50.0

	WheelOutFactor = 0.9
	WheelInFactor  = 1.1
	ZoomInFactor   = 1.2
	ZoomOutFactor  = 0.8
)

// Limits bounds the zoom factor.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultLimits returns the [0.1, 3.0] zoom range.
func DefaultLimits() Limits { return Limits{Min: DefaultMinZoom, Max: DefaultMaxZoom} }

func (l Limits) normalize() Limits {
	if l.Min <= 0 {
		l.Min = DefaultMinZoom
	}
	if l.Max <= 0 {
		l.Max = DefaultMaxZoom
	}
	if l.Max < l.Min {
		l.Min, l.Max = l.Max, l.Min
	}
	return l
}

// Clamp restricts z to the limits.
func (l Limits) Clamp(z float64) float64 {
	l = l.normalize()
	return min(max(z, l.Min), l.Max)
}

// Viewport holds the current zoom factor and pan offset. Pan is in screen
// pixels and is never clamped.
type Viewport struct {
	Zoom   float64 `json:"zoom"`
	Pan    Point   `json:"pan"`
	Limits Limits  `json:"limits"`
}

// New returns a viewport at zoom 1 with no pan.
func New(limits Limits) *Viewport {
	return &Viewport{Zoom: 1, Limits: limits.normalize()}
}

// ToScreen maps a world point to screen space.
func (v *Viewport) ToScreen(p Point) Point { return v.Pan.Add(p.Scale(v.Zoom)) }

// ToWorld maps a screen point to world space.
func (v *Viewport) ToWorld(p Point) Point { return p.Sub(v.Pan).Scale(1 / v.Zoom) }

// RectToScreen maps a world rectangle to screen space.
func (v *Viewport) RectToScreen(r Rect) Rect {
	o := v.ToScreen(Point{r.X, r.Y})
	return Rect{X: o.X, Y: o.Y, W: r.W * v.Zoom, H: r.H * v.Zoom}
}

// Reset returns to zoom 1 and pan at the origin.
func (v *Viewport) Reset() {
	v.Zoom = 1
	v.Pan = Point{}
}

// PanBy shifts the pan offset by delta screen pixels.
func (v *Viewport) PanBy(delta Point) { v.Pan = v.Pan.Add(delta) }

// ZoomAt multiplies the zoom by factor, clamped to the limits, keeping the
// world point under the screen point anchor fixed. Non-positive factors are
// ignored, and a zoom already outside the limits only moves in the factor's
// direction.
func (v *Viewport) ZoomAt(anchor Point, factor float64) {
	if factor <= 0 {
		return
	}
	old := v.Zoom
	next := v.Limits.Clamp(old * factor)
	if next == old || (factor < 1) != (next < old) {
		return
	}
	v.Pan = anchor.Sub(anchor.Sub(v.Pan).Scale(next / old))
	v.Zoom = next
}

// ZoomIn zooms in by ZoomInFactor around the center of a screen of the given
// size.
func (v *Viewport) ZoomIn(screen Size) { v.ZoomAt(screen.Center(), ZoomInFactor) }

// ZoomOut zooms out by ZoomOutFactor around the center of a screen of the
// given size.
func (v *Viewport) ZoomOut(screen Size) { v.ZoomAt(screen.Center(), ZoomOutFactor) }

// FitToContent picks the zoom and pan that show every rectangle inside a
// screen of the given size, never zooming past 100%. The bounding box is
// padded by margin world units on each side and centered on screen.
// The fitted zoom may fall below Limits.Min so that large diagrams still fit.
//
// An empty rects slice, or a screen with no area, resets the viewport.
func (v *Viewport) FitToContent(rects []Rect, screen Size, margin float64) {
	bounds, ok := Bounds(rects)
	if !ok || screen.W <= 0 || screen.H <= 0 {
		v.Reset()
		return
	}

	cw := bounds.W + 2*margin
	ch := bounds.H + 2*margin
	zoom := 1.0
	if cw > 0 {
		zoom = min(zoom, screen.W/cw)
	}
	if ch > 0 {
		zoom = min(zoom, screen.H/ch)
	}
	v.Zoom = zoom
	v.Pan = screen.Center().Sub(bounds.Center().Scale(v.Zoom))
}

// Percent returns the zoom as a rounded percentage, as shown by the zoom
// indicator.
func (v *Viewport) Percent() int { return int(v.Zoom*100 + 0.5) }
