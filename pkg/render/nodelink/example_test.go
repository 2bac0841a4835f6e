package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/render/nodelink"
	"github.com/matzehuels/schematic/pkg/schematic"
)

func ExampleToDOT() {
	l := schematic.Compute([]collection.Collection{
		{ID: "users", Name: "collections/users"},
		{ID: "orders", Name: "collections/orders", Fields: map[string]collection.Field{
			"owner": {Type: collection.TypeReference, Value: "collections/users"},
		}},
	}, schematic.DefaultOptions())

	dot := nodelink.ToDOT(l, nodelink.Options{EdgeLabels: true})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "orders" -> "users" [label="owner"];
}
