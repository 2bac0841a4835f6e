package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/schematic/pkg/schematic"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed lists fields in node labels. When false, only the title and
	// ID are shown.
	Detailed bool
	// EdgeLabels labels each edge with its field name.
	EdgeLabels bool
}

// ToDOT converts a layout to Graphviz DOT. Each level becomes a rank, and
// rankdir=BT keeps level 0 at the top as in the grid layout.
func ToDOT(l schematic.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=11, color=\"#3a5ba9\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	byLevel := make(map[int][]schematic.GraphNode)
	for _, n := range l.Nodes {
		byLevel[n.Level] = append(byLevel[n.Level], n)
	}
	for level := range l.Levels {
		nodes := byLevel[level]
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph level_%d {\n    rank=same;\n", level)
		for _, n := range nodes {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", n.ID(), fmtLabel(n, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	cycles := make(map[schematic.Edge]bool, len(l.CycleEdges))
	for _, e := range l.CycleEdges {
		cycles[e] = true
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		var attrs []string
		if opts.EdgeLabels {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if cycles[e] {
			attrs = append(attrs, `style=dashed`, `color="#b25b00"`, "constraint=false")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n schematic.GraphNode, detailed bool) string {
	c := n.Collection
	title := c.Title()
	if title == "" {
		title = c.ID
	}
	if !detailed {
		return title
	}

	parts := []string{title, c.ID}
	for _, name := range c.FieldNames() {
		f := c.Fields[name]
		line := name
		if f.Required {
			line += "*"
		}
		line += ": " + f.Type.String()
		if f.IsReference() {
			line += " -> " + f.Value
		}
		parts = append(parts, line)
	}
	if len(c.Rules) > 0 {
		parts = append(parts, fmt.Sprintf("rules: %d", len(c.Rules)))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales like the schematic output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
