package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/schematic"
)

func usersOrders() schematic.Layout {
	return schematic.Compute([]collection.Collection{
		{ID: "c1", Name: "collections/users", DisplayName: "Users"},
		{ID: "c2", Name: "collections/orders", Fields: map[string]collection.Field{
			"owner": {Type: collection.TypeReference, Value: "collections/users", Required: true},
			"total": {Type: collection.TypeDouble},
		}, Rules: []string{"total > 0"}},
	}, schematic.DefaultOptions())
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(usersOrders(), Options{})

	for _, want := range []string{
		"digraph G",
		"rankdir=BT",
		`subgraph level_0`,
		`"c1" [label="Users"]`,
		`subgraph level_1`,
		`"c2" [label="collections/orders"]`,
		`"c2" -> "c1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_EdgeLabels(t *testing.T) {
	dot := ToDOT(usersOrders(), Options{EdgeLabels: true})
	if !strings.Contains(dot, `"c2" -> "c1" [label="owner"];`) {
		t.Errorf("ToDOT() missing labeled edge:\n%s", dot)
	}
}

func TestToDOT_Cycle(t *testing.T) {
	l := schematic.Compute([]collection.Collection{
		{ID: "a", Name: "collections/a", Fields: map[string]collection.Field{"b": {Type: collection.TypeReference, Value: "collections/b"}}},
		{ID: "b", Name: "collections/b", Fields: map[string]collection.Field{"a": {Type: collection.TypeReference, Value: "collections/a"}}},
	}, schematic.DefaultOptions())

	dot := ToDOT(l, Options{})
	if strings.Count(dot, "style=dashed") != 1 {
		t.Errorf("want exactly one dashed cycle edge:\n%s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	l := usersOrders()
	orders, _ := l.Node("c2")

	if got := fmtLabel(orders, false); got != "collections/orders" {
		t.Errorf("simple label = %q", got)
	}

	want := "collections/orders\nc2\nowner*: reference -> collections/users\ntotal: double\nrules: 1"
	if got := fmtLabel(orders, true); got != want {
		t.Errorf("detailed label = %q, want %q", got, want)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="200pt" height="100pt" viewBox="0.00 0.00 200.00 100.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 200.00 100.00" width="200" height="100"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if noBox := []byte(`<svg><g/></svg>`); string(normalizeViewBox(noBox)) != string(noBox) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(usersOrders(), Options{EdgeLabels: true}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := string(svg)
	if !strings.HasPrefix(strings.TrimSpace(out), "<") || !strings.Contains(out, "<svg") {
		t.Errorf("not an SVG document: %.80s", out)
	}
	if !strings.Contains(out, "Users") || !strings.Contains(out, "owner") {
		t.Error("rendered SVG missing node or edge text")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected error for malformed DOT")
	}
}
