package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/pkg/graph"
	"github.com/matzehuels/schematic/pkg/pipeline"
)

// viewFlags registers the canvas and view flags shared by render, layout
// and view. Zero values mean "use the config file or the default".
func viewFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width in pixels (default 1280)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height in pixels (default 800)")
	cmd.Flags().Float64Var(&opts.Zoom, "zoom", 0, "zoom factor (default: fit to content)")
	cmd.Flags().Float64Var(&opts.PanX, "pan-x", 0, "horizontal pan in pixels (with --zoom)")
	cmd.Flags().Float64Var(&opts.PanY, "pan-y", 0, "vertical pan in pixels (with --zoom)")
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src        sourceFlags
		output     string
		formats    string
		layoutFile string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [schema.json|schema.toml ...]",
		Short: "Render the schema diagram to files",
		Long: `Render the schema diagram to one or more files.

Formats:
  svg           the diagram as shown on the canvas
  txt           the diagram drawn with box characters
  dot           Graphviz source of the reference graph
  nodelink-svg  the reference graph laid out by Graphviz
  json          the layout document (see 'schematic layout')
  graph         the leveled reference graph as JSON
  pdf, png      the SVG converted with rsvg-convert

With --layout the diagram is rebuilt from a saved layout document instead
of reading collections.`,
		Example: `  schematic render schema.json
  schematic render -f svg,dot,txt -o out/schema schema.json
  schematic render --url https://console.example.com -f png
  schematic render --layout schema.layout.json -f svg --zoom 1.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if layoutFile != "" {
				return c.runRenderLayout(cmd.Context(), layoutFile, output, &src, opts)
			}
			return c.runRender(cmd.Context(), args, output, &src, opts)
		},
	}

	src.register(cmd)
	viewFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format, '-' for stdout) or base path")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), txt, dot, nodelink-svg, json, graph, pdf, png")
	cmd.Flags().StringVar(&layoutFile, "layout", "", "render from a layout document instead of a source")
	cmd.Flags().BoolVar(&opts.Overlay, "overlay", false, "draw the zoom controls, zoom indicator and legend")
	cmd.Flags().BoolVar(&opts.Dots, "dots", false, "draw the dotted background grid")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "list fields in Graphviz node labels")
	cmd.Flags().BoolVar(&opts.EdgeLabels, "labels", false, "label Graphviz edges with field names")
	cmd.Flags().StringVar(&opts.LinkPrefix, "link-prefix", "", "link each collection card to <prefix>/collections/<key>")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG scale factor (default 2)")

	return cmd
}

// runRender fetches, lays out and renders.
func (c *CLI) runRender(ctx context.Context, files []string, output string, src *sourceFlags, opts pipeline.Options) error {
	opts, err := c.options(src, files, opts, true)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sw := startStopwatch(c.Logger)
	spinner := newSpinner(ctx, c.out, "Rendering schema...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	base := basePath(output, firstOr(files, appName))
	paths, err := c.writeArtifacts(result.Artifacts, opts.Formats, output, base)
	if err != nil {
		return err
	}
	sw.done("Rendered", "files", len(paths), "formats", strings.Join(opts.Formats, ","))

	c.reportRender(paths, result.Stats, result.CacheInfo.RenderHit)
	return nil
}

// runRenderLayout renders a saved layout document.
func (c *CLI) runRenderLayout(ctx context.Context, path, output string, src *sourceFlags, opts pipeline.Options) error {
	gl, err := graph.ReadLayoutFile(path)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", path, err)
	}
	opts, err = c.options(src, nil, opts, false)
	if err != nil {
		return err
	}
	d, err := pipeline.DiagramFromLayout(gl, opts)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", path, err)
	}

	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return err
	}

	base := basePath(output, strings.TrimSuffix(path, ".layout.json"))
	paths, err := c.writeArtifacts(artifacts, opts.Formats, output, base)
	if err != nil {
		return err
	}
	c.reportRender(paths, layoutStats(d.Layout()), hit)
	return nil
}

func (c *CLI) reportRender(paths []string, stats pipeline.Stats, cached bool) {
	if len(paths) == 0 {
		return // written to stdout
	}
	printSuccess(c.out, "Render complete")
	for _, p := range paths {
		printFile(c.out, p)
	}
	printStats(c.out, stats, cached)
	if stats.Cycles > 0 {
		printWarning(c.out, "%s closed a reference cycle; run with -v to list them", plural(stats.Cycles, "reference"))
	}
}

// writeArtifacts writes one file per format. A single format goes to output
// when it is set ("-" meaning stdout); otherwise files are named
// <base>.<ext>. It returns the paths written.
func (c *CLI) writeArtifacts(artifacts map[string][]byte, formats []string, output, base string) ([]string, error) {
	if len(formats) == 1 && output != "" && !isBasePath(output) {
		if output == "-" {
			_, err := c.out.Write(artifacts[formats[0]])
			return nil, err
		}
		return []string{output}, writeFile(output, artifacts[formats[0]])
	}

	var paths []string
	for _, f := range formats {
		path := base + "." + pipeline.Extension(f)
		if err := writeFile(path, artifacts[f]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// openOutput returns command output for "" or "-", otherwise a new file.
func (c *CLI) openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{c.out}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// basePath derives the output base from -o or the input file. Known format
// extensions are stripped.
func basePath(output, input string) string {
	if output == "" || output == "-" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return trimFormatExt(output)
}

// isBasePath reports whether output carries no format extension.
func isBasePath(output string) bool {
	return output != "-" && trimFormatExt(output) == output
}

func trimFormatExt(path string) string {
	for _, f := range []string{pipeline.FormatNodelinkSVG, pipeline.FormatGraph} {
		if ext := "." + pipeline.Extension(f); strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	ext := filepath.Ext(path)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(path, ext)
	}
	return path
}

func firstOr(s []string, def string) string {
	if len(s) > 0 {
		return s[0]
	}
	return def
}
