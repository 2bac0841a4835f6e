package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// =============================================================================
// Layout - Unified Visualization Format
// =============================================================================

// Layout is the serialization format for all visualizations.
//
// This is a discriminated union type - check VizType to determine which
// fields are populated:
//
//	Schematic ("schematic"):
//	  - Cards: positioned collection cards with their fields
//	  - Grid: the layout options the cards were placed with
//	  - Viewport: zoom and pan at export time (optional)
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Engine: Graphviz layout engine (e.g., "dot")
//
// Shared fields (both types):
//   - Width, Height: world extent of the content
//   - Nodes, Edges: graph structure
//   - Rows: level assignments (level → node IDs)
type Layout struct {
	// Discriminator
	VizType string `json:"viz_type" bson:"viz_type"`

	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Graph structure (shared)
	Nodes []Node           `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges []Edge           `json:"edges,omitempty" bson:"edges,omitempty"`
	Rows  map[int][]string `json:"rows,omitempty" bson:"rows,omitempty"`

	// Schematic-specific
	Cards    []Card             `json:"cards,omitempty" bson:"cards,omitempty"`
	Grid     *schematic.Options `json:"grid,omitempty" bson:"grid,omitempty"`
	Viewport *Viewport          `json:"viewport,omitempty" bson:"viewport,omitempty"`

	// Nodelink-specific
	DOT    string `json:"dot,omitempty" bson:"dot,omitempty"`
	Engine string `json:"engine,omitempty" bson:"engine,omitempty"`
}

// IsSchematic returns true if this is a schematic grid layout.
func (l *Layout) IsSchematic() bool { return l.VizType == VizTypeSchematic }

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// =============================================================================
// Card - Positioned Collection
// =============================================================================

// Card is a collection placed on the schematic grid, in world coordinates.
type Card struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	Label    string  `json:"label,omitempty" bson:"label,omitempty"`
	RouteKey string  `json:"route_key" bson:"route_key"`
	Level    int     `json:"level" bson:"level"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`
	Fields   []Field `json:"fields,omitempty" bson:"fields,omitempty"`
	Rules    int     `json:"rules,omitempty" bson:"rules,omitempty"`
}

// Field is one row of a card.
type Field struct {
	Name     string `json:"name" bson:"name"`
	Type     string `json:"type" bson:"type"`
	Value    string `json:"value,omitempty" bson:"value,omitempty"`
	Required bool   `json:"required,omitempty" bson:"required,omitempty"`
	System   bool   `json:"system,omitempty" bson:"system,omitempty"`
}

// Viewport records zoom and pan.
type Viewport struct {
	Zoom float64 `json:"zoom" bson:"zoom"`
	PanX float64 `json:"pan_x" bson:"pan_x"`
	PanY float64 `json:"pan_y" bson:"pan_y"`
}

// =============================================================================
// schematic.Layout ↔ Layout Conversion
// =============================================================================

// FromLayout exports a computed layout. vp may be nil.
func FromLayout(l schematic.Layout, vp *viewport.Viewport) Layout {
	opts := l.Options
	out := Layout{
		VizType: VizTypeSchematic,
		Nodes:   make([]Node, 0, len(l.Nodes)),
		Cards:   make([]Card, 0, len(l.Nodes)),
		Edges:   exportEdges(l),
		Rows:    make(map[int][]string),
		Grid:    &opts,
	}

	for _, n := range l.Nodes {
		c := n.Collection
		out.Nodes = append(out.Nodes, Node{ID: c.ID, Label: c.DisplayName, Name: c.Name, Level: n.Level})
		out.Rows[n.Level] = append(out.Rows[n.Level], c.ID)

		r := l.Rect(n)
		card := Card{
			ID:       c.ID,
			Name:     c.Name,
			Label:    c.DisplayName,
			RouteKey: c.RouteKey(),
			Level:    n.Level,
			X:        r.X,
			Y:        r.Y,
			Width:    r.W,
			Height:   r.H,
			Rules:    len(c.Rules),
		}
		for _, name := range c.FieldNames() {
			f := c.Fields[name]
			card.Fields = append(card.Fields, Field{
				Name:     name,
				Type:     f.Type.String(),
				Value:    f.Value,
				Required: f.Required,
				System:   f.System,
			})
		}
		out.Cards = append(out.Cards, card)
	}

	if b, ok := l.Bounds(); ok {
		out.Width = b.Right()
		out.Height = b.Bottom()
	}
	if vp != nil {
		out.Viewport = &Viewport{Zoom: vp.Zoom, PanX: vp.Pan.X, PanY: vp.Pan.Y}
	}
	return out
}

// FromNodelink exports a layout as a Graphviz document.
func FromNodelink(l schematic.Layout, dot string) Layout {
	out := FromLayout(l, nil)
	out.VizType = VizTypeNodelink
	out.Cards = nil
	out.Grid = nil
	out.DOT = dot
	out.Engine = "dot"
	return out
}

// Schematic rebuilds a renderable layout from a schematic document. Rules
// are restored as placeholders since only their count is serialized.
func (l *Layout) Schematic() (schematic.Layout, error) {
	if !l.IsSchematic() {
		return schematic.Layout{}, fmt.Errorf("layout is %q, not %q", l.VizType, VizTypeSchematic)
	}

	out := schematic.Layout{Options: schematic.DefaultOptions()}
	if l.Grid != nil {
		out.Options = l.Grid.WithDefaults()
	}

	perLevel := make(map[int]int)
	for _, card := range l.Cards {
		c := collection.Collection{
			ID:          card.ID,
			Name:        card.Name,
			DisplayName: card.Label,
		}
		if len(card.Fields) > 0 {
			c.Fields = make(map[string]collection.Field, len(card.Fields))
		}
		for _, f := range card.Fields {
			t, ok := collection.ParseFieldType(f.Type)
			if !ok && f.Type != "unknown" {
				return schematic.Layout{}, fmt.Errorf("card %s field %s: unknown type %q", card.ID, f.Name, f.Type)
			}
			c.Fields[f.Name] = collection.Field{Type: t, Value: f.Value, Required: f.Required, System: f.System}
		}
		for range card.Rules {
			c.Rules = append(c.Rules, "")
		}

		out.Nodes = append(out.Nodes, schematic.GraphNode{
			Collection: c,
			Level:      card.Level,
			Index:      perLevel[card.Level],
			Position:   viewport.Point{X: card.X, Y: card.Y},
		})
		perLevel[card.Level]++
		out.Levels = max(out.Levels, card.Level+1)
	}

	for _, e := range l.Edges {
		se := schematic.Edge{From: e.From, To: e.To, Label: e.Label}
		out.Edges = append(out.Edges, se)
		if e.Cycle {
			out.CycleEdges = append(out.CycleEdges, se)
		}
	}
	return out, nil
}

func exportEdges(l schematic.Layout) []Edge {
	cycles := make(map[schematic.Edge]bool, len(l.CycleEdges))
	for _, e := range l.CycleEdges {
		cycles[e] = true
	}
	out := make([]Edge, 0, len(l.Edges))
	for _, e := range l.Edges {
		out = append(out, Edge{From: e.From, To: e.To, Label: e.Label, Cycle: cycles[e]})
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeSchematic
	}

	switch {
	case l.IsSchematic():
		if len(l.Cards) != len(l.Nodes) {
			return Layout{}, fmt.Errorf("schematic layout has %d cards for %d nodes", len(l.Cards), len(l.Nodes))
		}
	case l.IsNodelink():
		if l.DOT == "" {
			return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
		}
	default:
		return Layout{}, fmt.Errorf("unknown viz type %q", l.VizType)
	}

	return l, nil
}

// WriteLayout writes a Layout as JSON to an io.Writer.
func WriteLayout(l Layout, w io.Writer) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadLayout decodes and validates a Layout from an io.Reader.
func ReadLayout(r io.Reader) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return UnmarshalLayout(data)
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
