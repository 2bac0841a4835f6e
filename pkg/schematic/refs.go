package schematic

import (
	"regexp"

	"github.com/matzehuels/schematic/pkg/collection"
)

var referencePattern = regexp.MustCompile(`collections/([^/]+)`)

// Edge is a reference from one collection to another. Label is the name of
// the field that holds the reference. Edges are not deduplicated: two fields
// pointing at the same collection give two edges.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Unresolved describes a reference field that produced no edge.
type Unresolved struct {
	Collection string `json:"collection"`
	Field      string `json:"field"`
	Value      string `json:"value"`
	// Self is set when the only match was the referencing collection.
	Self bool `json:"self,omitempty"`
}

// ReferenceFragment returns the collection name embedded in a reference
// value, or false if the value has no "collections/<name>" segment.
func ReferenceFragment(value string) (string, bool) {
	m := referencePattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractReferences returns one edge per resolvable reference field.
// Collections are visited in input order and their fields in name order.
func ExtractReferences(cs []collection.Collection) []Edge {
	edges, _ := Extract(cs)
	return edges
}

// Extract is ExtractReferences that also reports the fields it skipped.
func Extract(cs []collection.Collection) ([]Edge, []Unresolved) {
	var (
		edges      []Edge
		unresolved []Unresolved
	)
	for _, c := range cs {
		for _, name := range c.References() {
			value := c.Fields[name].Value
			target, ok := resolve(cs, value)
			switch {
			case !ok:
				unresolved = append(unresolved, Unresolved{Collection: c.ID, Field: name, Value: value})
			case target == c.ID:
				unresolved = append(unresolved, Unresolved{Collection: c.ID, Field: name, Value: value, Self: true})
			default:
				edges = append(edges, Edge{From: c.ID, To: target, Label: name})
			}
		}
	}
	return edges, unresolved
}

func resolve(cs []collection.Collection, value string) (string, bool) {
	frag, ok := ReferenceFragment(value)
	if !ok {
		return "", false
	}
	for _, c := range cs {
		if c.Matches(frag) {
			return c.ID, true
		}
	}
	return "", false
}
