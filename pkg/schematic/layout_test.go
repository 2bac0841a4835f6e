package schematic

import (
	"fmt"
	"testing"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

func usersOrders() []collection.Collection {
	return []collection.Collection{
		{ID: "c1", Name: "collections/users", Fields: map[string]collection.Field{}},
		{ID: "c2", Name: "collections/orders", Fields: map[string]collection.Field{"owner": ref("collections/users")}},
	}
}

func TestComputeUsersOrders(t *testing.T) {
	l := Compute(usersOrders(), DefaultOptions())

	if len(l.Edges) != 1 || l.Edges[0] != (Edge{From: "c2", To: "c1", Label: "owner"}) {
		t.Fatalf("Edges = %v, want [c2->c1 owner]", l.Edges)
	}
	c1, _ := l.Node("c1")
	c2, _ := l.Node("c2")
	if c1.Level != 0 || c2.Level != 1 {
		t.Errorf("levels c1=%d c2=%d, want 0 and 1", c1.Level, c2.Level)
	}
	if c1.Position != (viewport.Point{X: 100, Y: 100}) {
		t.Errorf("c1 position = %v, want {100 100}", c1.Position)
	}
	if c2.Position != (viewport.Point{X: 100, Y: 450}) {
		t.Errorf("c2 position = %v, want {100 450}", c2.Position)
	}
	if l.Levels != 2 {
		t.Errorf("Levels = %d, want 2", l.Levels)
	}
}

func TestComputeNoReferencesSingleRow(t *testing.T) {
	var cs []collection.Collection
	for i := range 5 {
		cs = append(cs, collection.Collection{
			ID:   fmt.Sprintf("c%d", i),
			Name: fmt.Sprintf("collections/t%d", i),
			Fields: map[string]collection.Field{
				"name": {Type: collection.TypeString},
			},
		})
	}
	l := Compute(cs, DefaultOptions())

	for i, n := range l.Nodes {
		if n.Level != 0 {
			t.Errorf("%s level = %d, want 0", n.ID(), n.Level)
		}
		if n.Position.Y != DefaultTopMargin {
			t.Errorf("%s y = %v, want %v", n.ID(), n.Position.Y, DefaultTopMargin)
		}
		wantX := DefaultLeftMargin + float64(i)*(DefaultNodeWidth+DefaultHorizontalGap)
		if n.ID() != cs[i].ID || n.Position.X != wantX {
			t.Errorf("node %d = %s at x=%v, want %s at x=%v", i, n.ID(), n.Position.X, cs[i].ID, wantX)
		}
	}
}

func TestComputeAcyclicLevels(t *testing.T) {
	cs := []collection.Collection{
		{ID: "items", Name: "collections/items", Fields: map[string]collection.Field{
			"order":   ref("collections/orders"),
			"product": ref("collections/products"),
		}},
		{ID: "orders", Name: "collections/orders", Fields: map[string]collection.Field{"owner": ref("collections/users")}},
		{ID: "products", Name: "collections/products"},
		{ID: "users", Name: "collections/users"},
	}
	l := Compute(cs, DefaultOptions())

	level := func(id string) int {
		n, ok := l.Node(id)
		if !ok {
			t.Fatalf("missing node %s", id)
		}
		return n.Level
	}

	for _, n := range l.Nodes {
		want := 0
		for _, e := range l.Edges {
			if e.From == n.ID() {
				want = max(want, level(e.To)+1)
			}
		}
		if n.Level != want {
			t.Errorf("level(%s) = %d, want %d", n.ID(), n.Level, want)
		}
	}
	if len(l.CycleEdges) != 0 {
		t.Errorf("CycleEdges = %v, want none", l.CycleEdges)
	}
}

func TestComputeCycleTerminates(t *testing.T) {
	cs := []collection.Collection{
		{ID: "a", Name: "collections/a", Fields: map[string]collection.Field{"b": ref("collections/b")}},
		{ID: "b", Name: "collections/b", Fields: map[string]collection.Field{"a": ref("collections/a")}},
	}
	first := Compute(cs, DefaultOptions())
	second := Compute(cs, DefaultOptions())

	for _, id := range []string{"a", "b"} {
		n1, _ := first.Node(id)
		n2, _ := second.Node(id)
		if n1.Level != n2.Level || n1.Position != n2.Position {
			t.Errorf("%s not reproducible: %+v vs %+v", id, n1, n2)
		}
	}
	if len(first.CycleEdges) != 1 {
		t.Errorf("CycleEdges = %v, want one back edge", first.CycleEdges)
	}
}

func TestComputeDegreeOrdering(t *testing.T) {
	// users and tags both sit at level 0; users is referenced twice.
	cs := []collection.Collection{
		{ID: "tags", Name: "collections/tags"},
		{ID: "users", Name: "collections/users"},
		{ID: "orders", Name: "collections/orders", Fields: map[string]collection.Field{
			"owner": ref("collections/users"),
			"tag":   ref("collections/tags"),
		}},
		{ID: "posts", Name: "collections/posts", Fields: map[string]collection.Field{"author": ref("collections/users")}},
	}
	l := Compute(cs, DefaultOptions())

	users, _ := l.Node("users")
	tags, _ := l.Node("tags")
	if users.Index != 0 || tags.Index != 1 {
		t.Errorf("level 0 order: users=%d tags=%d, want users first", users.Index, tags.Index)
	}

	orders, _ := l.Node("orders")
	posts, _ := l.Node("posts")
	if orders.Index != 0 || posts.Index != 1 {
		t.Errorf("level 1 order: orders=%d posts=%d, want orders first", orders.Index, posts.Index)
	}
}

func TestComputePositionsUnique(t *testing.T) {
	cs := []collection.Collection{
		{ID: "a", Name: "collections/a", Fields: map[string]collection.Field{"x": ref("collections/c")}},
		{ID: "b", Name: "collections/b", Fields: map[string]collection.Field{"x": ref("collections/c")}},
		{ID: "c", Name: "collections/c"},
		{ID: "d", Name: "collections/d"},
		{ID: "e", Name: "collections/e", Fields: map[string]collection.Field{"x": ref("collections/a")}},
	}
	l := Compute(cs, DefaultOptions())
	seen := make(map[viewport.Point]string)
	for _, n := range l.Nodes {
		if other, dup := seen[n.Position]; dup {
			t.Errorf("%s and %s share position %v", n.ID(), other, n.Position)
		}
		seen[n.Position] = n.ID()
	}
	if len(l.Nodes) != len(cs) {
		t.Errorf("got %d nodes, want %d", len(l.Nodes), len(cs))
	}
}

func TestComputeDropsDuplicateIDs(t *testing.T) {
	cs := []collection.Collection{
		{ID: "a", Name: "collections/first"},
		{ID: "a", Name: "collections/second"},
		{Name: "collections/no-id"},
	}
	l := Compute(cs, DefaultOptions())
	if len(l.Nodes) != 1 || l.Nodes[0].Collection.Name != "collections/first" {
		t.Errorf("Nodes = %+v", l.Nodes)
	}
}

func TestComputeEmpty(t *testing.T) {
	l := Compute(nil, DefaultOptions())
	if !l.Empty() || l.Levels != 0 {
		t.Errorf("empty layout = %+v", l)
	}
	if _, ok := l.Bounds(); ok {
		t.Error("Bounds() should report no content")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{NodeWidth: 120}.WithDefaults()
	want := DefaultOptions()
	want.NodeWidth = 120
	if got != want {
		t.Errorf("WithDefaults() = %+v, want %+v", got, want)
	}
}
