package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/pkg/graph"
	"github.com/matzehuels/schematic/pkg/pipeline"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/source"
)

// =============================================================================
// Shared Loading
// =============================================================================

// loader is an opened source plus the runner that reads it.
type loader struct {
	runner   *pipeline.Runner
	src      source.Source
	closeSrc func()
	opts     pipeline.Options
}

// open resolves options and connects the sources.
func (c *CLI) open(ctx context.Context, f *sourceFlags, files []string, opts pipeline.Options) (*loader, error) {
	opts, err := c.options(f, files, opts, true)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	src, closeSrc, err := pipeline.OpenSource(ctx, opts.Sources)
	if err != nil {
		runner.Close()
		return nil, err
	}
	return &loader{runner: runner, src: src, closeSrc: closeSrc, opts: opts}, nil
}

// diagram fetches the collections and lays them out.
func (s *loader) diagram(ctx context.Context) (*schematic.Diagram, error) {
	cs, err := s.runner.Fetch(ctx, s.src, s.opts)
	if err != nil {
		return nil, err
	}
	return s.runner.Build(ctx, cs, s.opts)
}

func (s *loader) Close() {
	s.closeSrc()
	s.runner.Close()
}

// loadDiagram opens the sources and builds the diagram behind a spinner.
func (c *CLI) loadDiagram(ctx context.Context, f *sourceFlags, files []string, opts pipeline.Options) (*schematic.Diagram, pipeline.Options, error) {
	s, err := c.open(ctx, f, files, opts)
	if err != nil {
		return nil, opts, err
	}
	defer s.Close()

	spinner := newSpinner(ctx, c.out, fmt.Sprintf("Loading collections from %s...", s.src.Name()))
	spinner.Start()
	d, err := s.diagram(ctx)
	if err != nil {
		spinner.StopWithError("Loading failed")
		return nil, s.opts, err
	}
	spinner.Stop()
	return d, s.opts, ctx.Err()
}

// =============================================================================
// layout
// =============================================================================

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src     sourceFlags
		output  string
		vizType string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [schema.json|schema.toml ...]",
		Short: "Compute the diagram layout and write it as JSON",
		Long: `Compute the diagram layout and write it as JSON.

The layout document records every collection with its level and position,
the reference edges, and the fitted viewport. 'schematic render --layout'
and 'schematic view --layout' redraw it without reading the source again.

With -t nodelink the document carries the Graphviz DOT source instead of
positions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vizType != graph.VizTypeSchematic && vizType != graph.VizTypeNodelink {
				return fmt.Errorf("invalid type %q (must be %s or %s)", vizType, graph.VizTypeSchematic, graph.VizTypeNodelink)
			}
			return c.runLayout(cmd.Context(), args, &src, opts, output, vizType)
		},
	}

	src.register(cmd)
	viewFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>.layout.json, '-' for stdout)")
	cmd.Flags().StringVarP(&vizType, "type", "t", graph.VizTypeSchematic, "document type: schematic, nodelink")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "list fields in Graphviz node labels (nodelink)")
	cmd.Flags().BoolVar(&opts.EdgeLabels, "labels", false, "label Graphviz edges (nodelink)")

	return cmd
}

// runLayout builds the diagram and writes its layout document.
func (c *CLI) runLayout(ctx context.Context, files []string, src *sourceFlags, opts pipeline.Options, output, vizType string) error {
	d, opts, err := c.loadDiagram(ctx, src, files, opts)
	if err != nil {
		return err
	}

	doc := graph.FromLayout(d.Layout(), d.Viewport())
	if vizType == graph.VizTypeNodelink {
		dot, err := pipeline.RenderFormat(ctx, d, pipeline.FormatDOT, opts)
		if err != nil {
			return err
		}
		doc = graph.FromNodelink(d.Layout(), string(dot))
	}

	if output == "" {
		output = basePath("", firstOr(files, appName)) + ".layout.json"
	}
	out, err := c.openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := graph.WriteLayout(doc, out); err != nil {
		return fmt.Errorf("write layout %s: %w", output, err)
	}
	if output == "-" {
		return nil
	}

	printSuccess(c.out, "Layout complete")
	printFile(c.out, output)
	printStats(c.out, layoutStats(d.Layout()), false)
	printNewline(c.out)
	if vizType == graph.VizTypeSchematic {
		printNextStep(c.out, "Render", appName+" render --layout "+output)
	}
	return nil
}
