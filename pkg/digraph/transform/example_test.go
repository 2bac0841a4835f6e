package transform_test

import (
	"fmt"

	"github.com/matzehuels/schematic/pkg/digraph"
	"github.com/matzehuels/schematic/pkg/digraph/transform"
)

func ExampleAssignLevels() {
	g := digraph.New()
	for _, id := range []string{"users", "orders", "items"} {
		_ = g.AddNode(digraph.Node{ID: id})
	}
	_ = g.AddEdge(digraph.Edge{From: "orders", To: "users", Label: "owner"})
	_ = g.AddEdge(digraph.Edge{From: "items", To: "orders", Label: "order"})

	levels := transform.AssignLevels(g)
	fmt.Println("users:", levels["users"])
	fmt.Println("orders:", levels["orders"])
	fmt.Println("items:", levels["items"])
	// Output:
	// users: 0
	// orders: 1
	// items: 2
}
