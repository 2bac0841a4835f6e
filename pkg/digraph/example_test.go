package digraph_test

import (
	"fmt"

	"github.com/matzehuels/schematic/pkg/digraph"
)

func ExampleGraph_basic() {
	// orders.owner -> users, items.order -> orders
	g := digraph.New()
	_ = g.AddNode(digraph.Node{ID: "users"})
	_ = g.AddNode(digraph.Node{ID: "orders"})
	_ = g.AddNode(digraph.Node{ID: "items"})
	_ = g.AddEdge(digraph.Edge{From: "orders", To: "users", Label: "owner"})
	_ = g.AddEdge(digraph.Edge{From: "items", To: "orders", Label: "order"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Referenced by orders:", g.Children("orders"))
	fmt.Println("Referencing orders:", g.Parents("orders"))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Referenced by orders: [users]
	// Referencing orders: [items]
}

func ExampleGraph_HasCycle() {
	g := digraph.New()
	_ = g.AddNode(digraph.Node{ID: "users"})
	_ = g.AddNode(digraph.Node{ID: "teams"})
	_ = g.AddEdge(digraph.Edge{From: "users", To: "teams", Label: "team"})
	_ = g.AddEdge(digraph.Edge{From: "teams", To: "users", Label: "lead"})

	fmt.Println("Cyclic:", g.HasCycle())
	// Output:
	// Cyclic: true
}
