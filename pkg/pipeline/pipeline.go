// Package pipeline runs the fetch → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Fetch: load collections from one or more sources, optionally cached
//  2. Build: extract references, assign levels and lay out the diagram
//  3. Render: produce artifacts (SVG, text, DOT, Graphviz SVG, layout JSON)
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{
//	    Sources: []pipeline.SourceSpec{{Kind: "file", Path: "schema.json"}},
//	    Formats: []string{"svg", "dot"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Stages can also run on their own:
//
//	cs, err := runner.Fetch(ctx, src, opts)
//	d, err := runner.Build(ctx, cs, opts)
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schematic/pkg/cache"
	errs "github.com/matzehuels/schematic/pkg/errors"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/interact"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1280.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultScale is the PNG rasterization scale.
	DefaultScale = 2.0
)

// Output formats.
const (
	FormatSVG         = "svg"
	FormatText        = "txt"
	FormatDOT         = "dot"
	FormatNodelinkSVG = "nodelink-svg"
	FormatJSON        = "json"
	FormatGraph       = "graph"
	FormatPDF         = "pdf"
	FormatPNG         = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:         true,
	FormatText:        true,
	FormatDOT:         true,
	FormatNodelinkSVG: true,
	FormatJSON:        true,
	FormatGraph:       true,
	FormatPDF:         true,
	FormatPNG:         true,
}

// Extension returns the file extension written for a format.
func Extension(format string) string {
	switch format {
	case FormatNodelinkSVG:
		return "nodelink.svg"
	case FormatGraph:
		return "graph.json"
	default:
		return format
	}
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is JSON-serializable so the server
// can accept it in requests.
type Options struct {
	// Fetch
	Sources []SourceSpec `json:"sources,omitempty"`
	Refresh bool         `json:"refresh,omitempty"`
	// CacheTTL overrides how long fetched collection lists stay cached.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Layout
	Grid schematic.Options `json:"grid"`

	// View. A zero Zoom fits the content to the canvas; otherwise Zoom, PanX
	// and PanY are applied as given.
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	MinZoom   float64 `json:"min_zoom,omitempty"`
	MaxZoom   float64 `json:"max_zoom,omitempty"`
	FitMargin float64 `json:"fit_margin,omitempty"`
	Zoom      float64 `json:"zoom,omitempty"`
	PanX      float64 `json:"pan_x,omitempty"`
	PanY      float64 `json:"pan_y,omitempty"`

	// Interaction
	DragThreshold float64       `json:"drag_threshold,omitempty"`
	Grace         time.Duration `json:"grace,omitempty"`

	// Render
	Formats    []string `json:"formats,omitempty"`
	Overlay    bool     `json:"overlay,omitempty"`
	Dots       bool     `json:"dots,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	EdgeLabels bool     `json:"edge_labels,omitempty"`
	LinkPrefix string   `json:"link_prefix,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	for i, s := range o.Sources {
		if err := s.Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidSource, err, "source %d", i)
		}
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetViewDefaults fills the canvas and zoom defaults.
func (o *Options) SetViewDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.MinZoom <= 0 {
		o.MinZoom = viewport.DefaultMinZoom
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = viewport.DefaultMaxZoom
	}
	if o.FitMargin <= 0 {
		o.FitMargin = viewport.DefaultFitMargin
	}
	if o.DragThreshold <= 0 {
		o.DragThreshold = interact.DefaultDragThreshold
	}
	if o.Grace <= 0 {
		o.Grace = interact.DefaultGrace
	}
	o.Grid = o.Grid.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForBuild fills view defaults and checks the zoom range.
func (o *Options) ValidateForBuild() error {
	o.SetViewDefaults()
	if o.MinZoom > o.MaxZoom {
		return errs.New(errs.ErrCodeInvalidOptions, "min zoom %.2f exceeds max zoom %.2f", o.MinZoom, o.MaxZoom)
	}
	if o.Zoom < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "zoom must not be negative")
	}
	return nil
}

// SetRenderDefaults fills the format list and PNG scale.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender fills defaults and checks formats.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.LinkPrefix != "" {
		if err := errs.ValidateURL(o.LinkPrefix); err != nil && !strings.HasPrefix(o.LinkPrefix, "/") {
			return err
		}
	}
	return nil
}

// Config returns the diagram configuration for these options.
func (o *Options) Config() schematic.Config {
	return schematic.Config{
		Layout:      o.Grid,
		Limits:      viewport.Limits{Min: o.MinZoom, Max: o.MaxZoom},
		FitMargin:   o.FitMargin,
		Interaction: interact.Config{DragThreshold: o.DragThreshold, Grace: o.Grace},
		Screen:      viewport.Size{W: o.Width, H: o.Height},
	}
}

// LayoutKeyOpts returns the cache key options for the layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeWidth:     o.Grid.NodeWidth,
		NodeHeight:    o.Grid.NodeHeight,
		HorizontalGap: o.Grid.HorizontalGap,
		LevelHeight:   o.Grid.LevelHeight,
		TopMargin:     o.Grid.TopMargin,
		LeftMargin:    o.Grid.LeftMargin,
	}
}

// ArtifactKeyOpts returns the cache key options for one format rendered
// from vp.
func (o *Options) ArtifactKeyOpts(format string, vp *viewport.Viewport) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Width:      o.Width,
		Height:     o.Height,
		Overlay:    o.Overlay,
		Dots:       o.Dots,
		Detailed:   o.Detailed,
		EdgeLabels: o.EdgeLabels,
		Links:      o.LinkPrefix,
	}
	if vp != nil {
		k.Zoom, k.PanX, k.PanY = vp.Zoom, vp.Pan.X, vp.Pan.Y
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	switch format {
	case FormatDOT, FormatNodelinkSVG:
		// Graphviz output depends only on the layout and the label options.
		k.Width, k.Height, k.Zoom, k.PanX, k.PanY = 0, 0, 0, 0, 0
		k.Overlay, k.Dots, k.Links = false, false, ""
	default:
		k.Detailed, k.EdgeLabels = false, false
	}
	return k
}
