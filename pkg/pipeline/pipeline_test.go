package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/matzehuels/schematic/pkg/cache"
	errs "github.com/matzehuels/schematic/pkg/errors"
	"github.com/matzehuels/schematic/pkg/httputil"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
	"github.com/matzehuels/schematic/pkg/source"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"txt", false},
		{"dot", false},
		{"nodelink-svg", false},
		{"json", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("canvas = %vx%v", opts.Width, opts.Height)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Grid.NodeWidth != 300 || opts.MaxZoom != viewport.DefaultMaxZoom {
		t.Errorf("grid/zoom defaults not applied: %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("Logger not set")
	}
}

func TestValidateOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"bad format", Options{Formats: []string{"gif"}}, errs.ErrCodeInvalidFormat},
		{"zoom range", Options{MinZoom: 2, MaxZoom: 1}, errs.ErrCodeInvalidOptions},
		{"negative zoom", Options{Zoom: -1}, errs.ErrCodeInvalidOptions},
		{"bad source", Options{Sources: []SourceSpec{{Kind: "ftp"}}}, errs.ErrCodeInvalidSource},
		{"bad link prefix", Options{LinkPrefix: "javascript:alert(1)"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}

	ok := Options{LinkPrefix: "/collections/"}
	if err := ok.ValidateAndSetDefaults(); err != nil {
		t.Errorf("relative link prefix rejected: %v", err)
	}
}

func TestSourceSpecValidate(t *testing.T) {
	tests := []struct {
		spec    SourceSpec
		wantErr bool
	}{
		{SourceSpec{Kind: SourceFile, Path: "schema.json"}, false},
		{SourceSpec{Kind: SourceFile}, true},
		{SourceSpec{Kind: SourceConnect, URL: "https://console.example.com"}, false},
		{SourceSpec{Kind: SourceConnect, URL: "console.example.com"}, true},
		{SourceSpec{Kind: SourcePostgres, DSN: "postgres://localhost/kama"}, false},
		{SourceSpec{Kind: SourcePostgres}, true},
		{SourceSpec{Kind: SourceMongo, DSN: "mongodb://localhost", Database: "kama"}, false},
		{SourceSpec{Kind: SourceMongo, DSN: "mongodb://localhost"}, true},
		{SourceSpec{}, true},
	}
	for _, tt := range tests {
		err := tt.spec.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
		}
	}
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()

	if _, closeFn, err := OpenSource(ctx, nil); !errs.Is(err, errs.ErrCodeInvalidSource) || closeFn == nil {
		t.Errorf("no specs: err = %v", err)
	}

	src, closeFn, err := OpenSource(ctx, []SourceSpec{{Kind: SourceFile, Path: "a.json"}})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if src.Name() != "file:a.json" {
		t.Errorf("Name() = %q", src.Name())
	}

	src, closeFn, err = OpenSource(ctx, []SourceSpec{
		{Kind: SourceFile, Path: "a.json"},
		{Kind: SourceConnect, URL: "https://console.example.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := src.(*source.Multi); !ok {
		t.Errorf("two specs gave %T, want *source.Multi", src)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code errs.Code
	}{
		{source.ErrNotFound, errs.ErrCodeNotFound},
		{source.ErrUnauthorized, errs.ErrCodeUnauthorized},
		{context.DeadlineExceeded, errs.ErrCodeTimeout},
		{httputil.ErrNetwork, errs.ErrCodeNetwork},
		{errors.New("decode collections: bad json"), errs.ErrCodeInvalidSource},
		{errs.New(errs.ErrCodeInvalidOptions, "nope"), errs.ErrCodeInvalidOptions},
		{fmt.Errorf("list collections: %w", &errs.RateLimitedError{RetryAfter: 2}), errs.ErrCodeRateLimited},
	}
	for _, tt := range tests {
		if got := errs.GetCode(classify("s", tt.err)); got != tt.code {
			t.Errorf("classify(%v) = %s, want %s", tt.err, got, tt.code)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Overlay: true}
	opts.SetViewDefaults()
	a := &viewport.Viewport{Zoom: 1}
	b := &viewport.Viewport{Zoom: 2, Pan: viewport.Point{X: 10}}

	k := cache.NewDefaultKeyer()
	if k.ArtifactKey("h", opts.ArtifactKeyOpts(FormatSVG, a)) == k.ArtifactKey("h", opts.ArtifactKeyOpts(FormatSVG, b)) {
		t.Error("svg key should depend on the viewport")
	}
	if k.ArtifactKey("h", opts.ArtifactKeyOpts(FormatDOT, a)) != k.ArtifactKey("h", opts.ArtifactKeyOpts(FormatDOT, b)) {
		t.Error("dot key should not depend on the viewport")
	}
}

func TestExtension(t *testing.T) {
	if Extension(FormatNodelinkSVG) != "nodelink.svg" || Extension(FormatGraph) != "graph.json" || Extension(FormatText) != "txt" {
		t.Errorf("Extension mismatch")
	}
}
