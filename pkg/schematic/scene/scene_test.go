package scene

import (
	"slices"
	"testing"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/interact"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

func fixture() []collection.Collection {
	return []collection.Collection{
		{ID: "c1", Name: "collections/users", DisplayName: "Users", Fields: map[string]collection.Field{
			"id":    {Type: collection.TypeIdentifier, Value: "UUID", Required: true, System: true},
			"email": {Type: collection.TypeString, Required: true},
		}, Rules: []string{"size(email) > 3"}},
		{ID: "c2", Name: "collections/orders", Fields: map[string]collection.Field{
			"owner": {Type: collection.TypeReference, Value: "collections/users"},
			"paid":  {Type: collection.TypeBool},
			"ghost": {Type: collection.TypeReference, Value: "collections/missing"},
		}, Rules: []string{"a", "b"}},
	}
}

func newDiagram(cs []collection.Collection) *schematic.Diagram {
	cfg := schematic.DefaultConfig()
	cfg.Screen = viewport.Size{W: 1000, H: 800}
	return schematic.NewDiagram(cs, cfg)
}

type recorder struct {
	calls    []string
	boxes    []Box
	arrows   []Arrow
	overlays []Overlay
}

func (r *recorder) Box(b Box) {
	r.calls = append(r.calls, "box:"+b.ID)
	r.boxes = append(r.boxes, b)
}

func (r *recorder) Arrow(a Arrow) {
	r.calls = append(r.calls, "arrow:"+a.Label)
	r.arrows = append(r.arrows, a)
}

func (r *recorder) Overlay(o Overlay) {
	r.calls = append(r.calls, "overlay")
	r.overlays = append(r.overlays, o)
}

func TestBuildBoxes(t *testing.T) {
	s := Build(newDiagram(fixture()))
	if len(s.Boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(s.Boxes))
	}

	users := s.Boxes[0]
	if users.ID != "c1" || users.Title != "Users" || users.Subtitle != "c1" || users.RouteKey != "users" {
		t.Errorf("users box = %+v", users)
	}
	if users.Rules != "1 rule" {
		t.Errorf("Rules = %q, want 1 rule", users.Rules)
	}
	wantFields := []FieldRow{
		{Name: "email", Type: "string", Required: true},
		{Name: "id", Type: "identifier", Required: true, System: true},
	}
	if !slices.Equal(users.Fields, wantFields) {
		t.Errorf("Fields = %+v, want %+v", users.Fields, wantFields)
	}

	orders := s.Boxes[1]
	if orders.Title != "collections/orders" || orders.Rules != "2 rules" {
		t.Errorf("orders box = %+v", orders)
	}
	if orders.FieldHeading() != "Fields (3)" {
		t.Errorf("FieldHeading() = %q", orders.FieldHeading())
	}
	if !orders.Fields[1].Reference || orders.Fields[2].Type != "boolean" {
		t.Errorf("orders fields = %+v", orders.Fields)
	}
}

func TestBuildArrows(t *testing.T) {
	d := newDiagram(fixture())
	s := Build(d)

	if len(s.Arrows) != 1 {
		t.Fatalf("got %d arrows, want 1 (unresolved reference skipped)", len(s.Arrows))
	}
	a := s.Arrows[0]
	if a.From != "c2" || a.To != "c1" || a.Label != "owner" {
		t.Errorf("arrow = %+v", a)
	}

	users, _ := d.Layout().Node("c1")
	if want := d.ScreenRect(users).Center(); a.End != want {
		t.Errorf("End = %v, want users center %v", a.End, want)
	}
	if a.Mid != a.Start.Add(a.End).Scale(0.5) {
		t.Errorf("Mid = %v, not the midpoint", a.Mid)
	}
}

func TestBuildFollowsViewport(t *testing.T) {
	d := newDiagram(fixture())
	before := Build(d).Boxes[0].Rect

	d.Viewport().PanBy(viewport.Point{X: 30, Y: -10})
	after := Build(d).Boxes[0].Rect
	if after.X != before.X+30 || after.Y != before.Y-10 {
		t.Errorf("box did not pan: %+v -> %+v", before, after)
	}

	d.Reset()
	d.Viewport().ZoomAt(viewport.Point{}, 0.5)
	r := Build(d).Boxes[0].Rect
	if r.W != 150 || r.H != 100 || r.X != 50 {
		t.Errorf("zoomed box = %+v, want half size at x=50", r)
	}
}

func TestBuildCycleArrows(t *testing.T) {
	cs := []collection.Collection{
		{ID: "a", Name: "collections/a", Fields: map[string]collection.Field{"b": {Type: collection.TypeReference, Value: "collections/b"}}},
		{ID: "b", Name: "collections/b", Fields: map[string]collection.Field{"a": {Type: collection.TypeReference, Value: "collections/a"}}},
	}
	s := Build(newDiagram(cs))
	cycles := 0
	for _, a := range s.Arrows {
		if a.Cycle {
			cycles++
		}
	}
	if len(s.Arrows) != 2 || cycles != 1 {
		t.Errorf("arrows = %+v, want 2 with one cycle edge", s.Arrows)
	}
}

func TestOverlay(t *testing.T) {
	d := newDiagram(fixture())
	d.Reset()
	d.Input().Wheel(viewport.Point{}, 1)
	d.Input().Wheel(viewport.Point{}, 1)

	o := Build(d).Overlay
	if o.ZoomLabel != "Zoom: 81%" {
		t.Errorf("ZoomLabel = %q", o.ZoomLabel)
	}
	if len(o.Controls) != 4 || o.Controls[0].Kind != interact.KindZoomIn || o.Controls[3].Kind != interact.KindFit {
		t.Errorf("Controls = %+v", o.Controls)
	}
	if o.Empty != nil || len(o.Legend) == 0 {
		t.Errorf("non-empty diagram overlay = %+v", o)
	}
}

func TestEmptyState(t *testing.T) {
	s := Build(newDiagram(nil))
	if len(s.Boxes) != 0 || len(s.Arrows) != 0 {
		t.Errorf("empty scene has content: %+v", s)
	}
	if !slices.Equal(s.Overlay.Empty, EmptyState) {
		t.Errorf("Empty = %v", s.Overlay.Empty)
	}
	if s.Overlay.Legend != nil {
		t.Error("legend should be hidden when empty")
	}
}

func TestControlAt(t *testing.T) {
	s := Build(newDiagram(fixture()))
	second := s.Overlay.Controls[1].Rect.Center()
	if k, ok := s.ControlAt(second); !ok || k != interact.KindZoomOut {
		t.Errorf("ControlAt(%v) = %v, %v", second, k, ok)
	}
	if _, ok := s.ControlAt(viewport.Point{X: 500, Y: 500}); ok {
		t.Error("no control expected in the middle of the canvas")
	}
}

func TestDrawOrder(t *testing.T) {
	var r recorder
	Draw(&r, Build(newDiagram(fixture())))
	want := []string{"arrow:owner", "box:c1", "box:c2", "overlay"}
	if !slices.Equal(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestRulesBadge(t *testing.T) {
	for n, want := range map[int]string{0: "", 1: "1 rule", 7: "7 rules"} {
		if got := RulesBadge(n); got != want {
			t.Errorf("RulesBadge(%d) = %q, want %q", n, got, want)
		}
	}
}
