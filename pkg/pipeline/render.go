package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/schematic/pkg/digraph"
	"github.com/matzehuels/schematic/pkg/graph"
	"github.com/matzehuels/schematic/pkg/render"
	"github.com/matzehuels/schematic/pkg/render/nodelink"
	"github.com/matzehuels/schematic/pkg/render/svg"
	"github.com/matzehuels/schematic/pkg/render/term"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/scene"
)

// Render produces every format in opts.Formats from the diagram's current
// view.
func Render(ctx context.Context, d *schematic.Diagram, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, d, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat produces a single format.
func RenderFormat(ctx context.Context, d *schematic.Diagram, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg.Render(scene.Build(d), svgOptions(opts)...), nil
	case FormatText:
		return []byte(term.Render(scene.Build(d), term.WithPlain())), nil
	case FormatDOT:
		return []byte(toDOT(d, opts)), nil
	case FormatNodelinkSVG:
		return nodelink.RenderSVG(ctx, toDOT(d, opts))
	case FormatJSON:
		return graph.MarshalLayout(graph.FromLayout(d.Layout(), d.Viewport()))
	case FormatGraph:
		return graph.MarshalGraph(referenceGraph(d))
	case FormatPDF:
		return render.ToPDF(ctx, svg.Render(scene.Build(d), svgOptions(opts)...))
	case FormatPNG:
		return render.ToPNG(ctx, svg.Render(scene.Build(d), svgOptions(opts)...), opts.Scale)
	default:
		return nil, ValidateFormat(format)
	}
}

func toDOT(d *schematic.Diagram, opts Options) string {
	return nodelink.ToDOT(d.Layout(), nodelink.Options{Detailed: opts.Detailed, EdgeLabels: opts.EdgeLabels})
}

// referenceGraph is the diagram's reference graph with the levels the
// layout assigned.
func referenceGraph(d *schematic.Diagram) *digraph.Graph {
	l := d.Layout()
	g := schematic.BuildGraph(d.Collections(), l.Edges)
	levels := make(map[string]int, len(l.Nodes))
	for _, n := range l.Nodes {
		levels[n.ID()] = n.Level
	}
	g.SetLevels(levels)
	return g
}

func svgOptions(opts Options) []svg.Option {
	var out []svg.Option
	if !opts.Overlay {
		out = append(out, svg.WithoutOverlay())
	}
	if opts.Dots {
		out = append(out, svg.WithGrid())
	}
	if opts.LinkPrefix != "" {
		out = append(out, svg.WithLinks(opts.LinkPrefix))
	}
	return out
}
