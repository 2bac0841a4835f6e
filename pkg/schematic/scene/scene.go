package scene

import (
	"fmt"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/interact"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Canvas receives draw commands. Coordinates are screen pixels.
type Canvas interface {
	Box(Box)
	Arrow(Arrow)
	Overlay(Overlay)
}

// Scene is a diagram ready to draw.
type Scene struct {
	Size    viewport.Size `json:"size"`
	Zoom    float64       `json:"zoom"`
	Boxes   []Box         `json:"boxes"`
	Arrows  []Arrow       `json:"arrows"`
	Overlay Overlay       `json:"overlay"`
}

// Box is one collection card.
type Box struct {
	ID       string        `json:"id"`
	RouteKey string        `json:"routeKey"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Tag      string        `json:"tag"`
	Level    int           `json:"level"`
	Rect     viewport.Rect `json:"rect"`
	Fields   []FieldRow    `json:"fields"`
	// Rules is the badge text, empty when the collection has no rules.
	Rules string `json:"rules,omitempty"`
}

// FieldHeading returns the field list heading, e.g. "Fields (3)".
func (b Box) FieldHeading() string { return fmt.Sprintf("Fields (%d)", len(b.Fields)) }

// FieldRow is one line of a card's field list.
type FieldRow struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Required  bool   `json:"required,omitempty"`
	Reference bool   `json:"reference,omitempty"`
	System    bool   `json:"system,omitempty"`
}

// Arrow is one reference edge drawn between card centers, pointing at the
// referenced collection.
type Arrow struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Label string         `json:"label"`
	Start viewport.Point `json:"start"`
	End   viewport.Point `json:"end"`
	Mid   viewport.Point `json:"mid"`
	// Cycle marks an edge that closes a reference cycle.
	Cycle bool `json:"cycle,omitempty"`
}

// Overlay is drawn on top of the diagram and does not move with the
// viewport.
type Overlay struct {
	Controls   []Control     `json:"controls"`
	ZoomLabel  string        `json:"zoomLabel"`
	ZoomRect   viewport.Rect `json:"zoomRect"`
	Legend     []string      `json:"legend,omitempty"`
	LegendRect viewport.Rect `json:"legendRect"`
	// Empty holds the empty-state lines; it is nil when there are nodes.
	Empty []string `json:"empty,omitempty"`
}

// Control is a view command button.
type Control struct {
	Kind  interact.Kind `json:"kind"`
	Title string        `json:"title"`
	Icon  string        `json:"icon"`
	Rect  viewport.Rect `json:"rect"`
}

// Overlay geometry in screen pixels.
const (
	ControlSize   = 40.0
	ControlGap    = 8.0
	OverlayInset  = 16.0
	ZoomBoxWidth  = 96.0
	ZoomBoxHeight = 32.0
	LegendWidth   = 240.0
	LegendLine    = 20.0
)

// Legend lines shown in the top-right panel.
var Legend = []string{
	"Reference connection",
	"ref: Reference field",
	"Click: Navigate to collection",
	"Pan: Click and drag canvas",
	"Zoom: Mouse wheel",
}

// EmptyState is shown instead of the canvas when there are no collections.
var EmptyState = []string{
	"No collections found",
	"Connect to a server with collections to see the schema",
}

var controls = []struct {
	kind  interact.Kind
	title string
	icon  string
}{
	{interact.KindZoomIn, "Zoom In", "+"},
	{interact.KindZoomOut, "Zoom Out", "-"},
	{interact.KindReset, "Reset View", "1:1"},
	{interact.KindFit, "Fit to View", "[ ]"},
}

// Build composes the diagram's current state into a scene.
func Build(d *schematic.Diagram) Scene {
	l := d.Layout()
	vp := d.Viewport()
	s := Scene{Size: d.Screen(), Zoom: vp.Zoom}

	for _, n := range l.Nodes {
		s.Boxes = append(s.Boxes, box(n, d.ScreenRect(n)))
	}

	cycles := make(map[schematic.Edge]bool, len(l.CycleEdges))
	for _, e := range l.CycleEdges {
		cycles[e] = true
	}
	for _, e := range l.Edges {
		from, okF := l.Node(e.From)
		to, okT := l.Node(e.To)
		if !okF || !okT {
			continue
		}
		start := d.ScreenRect(from).Center()
		end := d.ScreenRect(to).Center()
		s.Arrows = append(s.Arrows, Arrow{
			From:  e.From,
			To:    e.To,
			Label: e.Label,
			Start: start,
			End:   end,
			Mid:   start.Add(end).Scale(0.5),
			Cycle: cycles[e],
		})
	}

	s.Overlay = overlay(s.Size, vp.Percent(), l.Empty())
	return s
}

func box(n schematic.GraphNode, r viewport.Rect) Box {
	c := n.Collection
	b := Box{
		ID:       c.ID,
		RouteKey: c.RouteKey(),
		Title:    c.Title(),
		Subtitle: c.ID,
		Tag:      "Database",
		Level:    n.Level,
		Rect:     r,
		Rules:    RulesBadge(len(c.Rules)),
	}
	for _, name := range c.FieldNames() {
		b.Fields = append(b.Fields, fieldRow(name, c.Fields[name]))
	}
	return b
}

func fieldRow(name string, f collection.Field) FieldRow {
	return FieldRow{
		Name:      name,
		Type:      f.Type.String(),
		Required:  f.Required,
		Reference: f.IsReference(),
		System:    f.System,
	}
}

// RulesBadge returns "1 rule", "N rules", or "" for zero.
func RulesBadge(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 rule"
	default:
		return fmt.Sprintf("%d rules", n)
	}
}

func overlay(size viewport.Size, percent int, empty bool) Overlay {
	o := Overlay{
		ZoomLabel: fmt.Sprintf("Zoom: %d%%", percent),
		ZoomRect: viewport.Rect{
			X: OverlayInset,
			Y: size.H - OverlayInset - ZoomBoxHeight,
			W: ZoomBoxWidth,
			H: ZoomBoxHeight,
		},
	}
	for i, c := range controls {
		o.Controls = append(o.Controls, Control{
			Kind:  c.kind,
			Title: c.title,
			Icon:  c.icon,
			Rect: viewport.Rect{
				X: OverlayInset,
				Y: OverlayInset + float64(i)*(ControlSize+ControlGap),
				W: ControlSize,
				H: ControlSize,
			},
		})
	}
	if empty {
		o.Empty = EmptyState
		return o
	}
	o.Legend = Legend
	o.LegendRect = viewport.Rect{
		X: size.W - OverlayInset - LegendWidth,
		Y: OverlayInset,
		W: LegendWidth,
		H: LegendLine * float64(len(Legend)+2),
	}
	return o
}

// ControlAt returns the view command whose button contains p.
func (s Scene) ControlAt(p viewport.Point) (interact.Kind, bool) {
	for _, c := range s.Overlay.Controls {
		if c.Rect.Contains(p) {
			return c.Kind, true
		}
	}
	return "", false
}

// Draw replays the scene onto c: arrows first, then cards, then the overlay.
func Draw(c Canvas, s Scene) {
	for _, a := range s.Arrows {
		c.Arrow(a)
	}
	for _, b := range s.Boxes {
		c.Box(b)
	}
	c.Overlay(s.Overlay)
}
