package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/digraph"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

func sampleCollections() []collection.Collection {
	return []collection.Collection{
		{ID: "c1", Name: "collections/users", DisplayName: "Users", Fields: map[string]collection.Field{
			"id":    {Type: collection.TypeIdentifier, Value: "UUID", Required: true, System: true},
			"email": {Type: collection.TypeString, Required: true},
		}},
		{ID: "c2", Name: "collections/orders", Fields: map[string]collection.Field{
			"owner": {Type: collection.TypeReference, Value: "collections/users"},
		}, Rules: []string{"a", "b"}},
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := digraph.New()
	_ = g.AddNode(digraph.Node{ID: "b", Level: 1, Meta: digraph.Metadata{"name": "collections/b", "color": "red"}})
	_ = g.AddNode(digraph.Node{ID: "a"})
	_ = g.AddEdge(digraph.Edge{From: "b", To: "a", Label: "parent"})

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"name": "collections/b"`) {
		t.Errorf("name should be promoted to a node field:\n%s", buf.String())
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if !slices.Equal(got.IDs(), []string{"b", "a"}) {
		t.Errorf("IDs() = %v, want insertion order [b a]", got.IDs())
	}
	n, _ := got.Node("b")
	if n.Level != 1 || n.Meta["name"] != "collections/b" || n.Meta["color"] != "red" {
		t.Errorf("node b = %+v", n)
	}
	if e := got.Edges(); len(e) != 1 || e[0].Label != "parent" {
		t.Errorf("Edges() = %v", e)
	}
}

func TestToDigraphErrors(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		want error
	}{
		{"duplicate", Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}}, digraph.ErrDuplicateNodeID},
		{"empty id", Graph{Nodes: []Node{{}}}, digraph.ErrInvalidNodeID},
		{"dangling", Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{From: "a", To: "x"}}}, digraph.ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToDigraph(tt.g); !errors.Is(err, tt.want) {
				t.Errorf("ToDigraph() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromLayout(t *testing.T) {
	l := schematic.Compute(sampleCollections(), schematic.DefaultOptions())
	vp := viewport.New(viewport.DefaultLimits())
	vp.Zoom = 0.5

	out := FromLayout(l, vp)
	if !out.IsSchematic() {
		t.Fatalf("VizType = %q", out.VizType)
	}
	if len(out.Cards) != 2 || len(out.Nodes) != 2 {
		t.Fatalf("got %d cards, %d nodes", len(out.Cards), len(out.Nodes))
	}

	users := out.Cards[0]
	if users.RouteKey != "users" || users.X != 100 || users.Y != 100 || users.Width != 300 {
		t.Errorf("users card = %+v", users)
	}
	if len(users.Fields) != 2 || users.Fields[0].Name != "email" || !users.Fields[1].System {
		t.Errorf("users fields = %+v", users.Fields)
	}
	if out.Cards[1].Rules != 2 || out.Cards[1].Y != 450 {
		t.Errorf("orders card = %+v", out.Cards[1])
	}
	if !slices.Equal(out.Rows[1], []string{"c2"}) {
		t.Errorf("Rows = %v", out.Rows)
	}
	if out.Width != 400 || out.Height != 650 {
		t.Errorf("extent = %vx%v, want 400x650", out.Width, out.Height)
	}
	if out.Viewport == nil || out.Viewport.Zoom != 0.5 {
		t.Errorf("Viewport = %+v", out.Viewport)
	}
}

func TestSchematicRoundTrip(t *testing.T) {
	l := schematic.Compute(sampleCollections(), schematic.DefaultOptions())

	data, err := MarshalLayout(FromLayout(l, nil))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	got, err := doc.Schematic()
	if err != nil {
		t.Fatalf("Schematic: %v", err)
	}

	if len(got.Nodes) != len(l.Nodes) || got.Levels != l.Levels {
		t.Fatalf("got %d nodes / %d levels", len(got.Nodes), got.Levels)
	}
	for i, n := range got.Nodes {
		want := l.Nodes[i]
		if n.Position != want.Position || n.Level != want.Level || n.ID() != want.ID() {
			t.Errorf("node %d = %+v, want %+v", i, n, want)
		}
	}
	orders, ok := got.Node("c2")
	if !ok || len(orders.Collection.Rules) != 2 || orders.Collection.Fields["owner"] != l.Nodes[1].Collection.Fields["owner"] {
		t.Errorf("orders = %+v", orders)
	}
	if !slices.Equal(got.Edges, l.Edges) {
		t.Errorf("Edges = %v, want %v", got.Edges, l.Edges)
	}
}

func TestCycleEdgesSurvive(t *testing.T) {
	l := schematic.Compute([]collection.Collection{
		{ID: "a", Name: "collections/a", Fields: map[string]collection.Field{"b": {Type: collection.TypeReference, Value: "collections/b"}}},
		{ID: "b", Name: "collections/b", Fields: map[string]collection.Field{"a": {Type: collection.TypeReference, Value: "collections/a"}}},
	}, schematic.DefaultOptions())

	doc := FromLayout(l, nil)
	var cycles int
	for _, e := range doc.Edges {
		if e.Cycle {
			cycles++
		}
	}
	if cycles != 1 {
		t.Fatalf("exported %d cycle edges, want 1", cycles)
	}
	got, err := doc.Schematic()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.CycleEdges, l.CycleEdges) {
		t.Errorf("CycleEdges = %v, want %v", got.CycleEdges, l.CycleEdges)
	}
}

func TestUnmarshalLayoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"default type", `{"width": 1}`, false},
		{"card mismatch", `{"viz_type": "schematic", "nodes": [{"id": "a"}]}`, true},
		{"nodelink without dot", `{"viz_type": "nodelink"}`, true},
		{"nodelink", `{"viz_type": "nodelink", "dot": "digraph G {}"}`, false},
		{"unknown type", `{"viz_type": "tower"}`, true},
		{"bad json", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNodelinkSchematicFails(t *testing.T) {
	l := schematic.Compute(sampleCollections(), schematic.DefaultOptions())
	doc := FromNodelink(l, "digraph G {}")
	if !doc.IsNodelink() || doc.Engine != "dot" || len(doc.Cards) != 0 {
		t.Errorf("FromNodelink() = %+v", doc)
	}
	if _, err := doc.Schematic(); err == nil {
		t.Error("Schematic() on a nodelink layout should fail")
	}
}

func TestLayoutFiles(t *testing.T) {
	dir := t.TempDir()
	l := schematic.Compute(sampleCollections(), schematic.DefaultOptions())

	path := filepath.Join(dir, "layout.json")
	if err := WriteLayoutFile(FromLayout(l, nil), path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(got.Cards) != 2 {
		t.Errorf("got %d cards", len(got.Cards))
	}

	if _, err := ReadLayoutFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	graphPath := filepath.Join(dir, "graph.json")
	g := schematic.BuildGraph(sampleCollections(), l.Edges)
	if err := WriteGraphFile(g, graphPath); err != nil {
		t.Fatal(err)
	}
	rg, err := ReadGraphFile(graphPath)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if rg.NodeCount() != 2 || rg.EdgeCount() != 1 {
		t.Errorf("read graph: %d nodes, %d edges", rg.NodeCount(), rg.EdgeCount())
	}
}
