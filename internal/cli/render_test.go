package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/schematic/pkg/graph"
	"github.com/matzehuels/schematic/pkg/pipeline"
)

const testSchema = `{"collections": [
	{"id": "users", "name": "collections/users", "displayName": "Users"},
	{"id": "orders", "name": "collections/orders",
	 "fields": {"owner": {"referenceType": "collections/users", "required": true}}}
]}`

// writeSchema writes the users/orders schema to a temp dir.
func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(testSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with isolated cache and config dirs and
// returns the command output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)

	root := c.RootCommand()
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "txt", []string{"txt"}},
		{"multiple formats", "svg,dot,nodelink-svg", []string{"svg", "dot", "nodelink-svg"}},
		{"spaces and empty entries", " svg , ,json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input string
		want          string
	}{
		{"", "schema.json", "schema"},
		{"-", "dir/schema.toml", "dir/schema"},
		{"out/diagram", "schema.json", "out/diagram"},
		{"out/diagram.svg", "schema.json", "out/diagram"},
		{"out/diagram.nodelink.svg", "schema.json", "out/diagram"},
		{"out/diagram.graph.json", "schema.json", "out/diagram"},
		{"out/diagram.v2", "schema.json", "out/diagram.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestIsBasePath(t *testing.T) {
	tests := map[string]bool{
		"out/diagram":     true,
		"out/diagram.svg": false,
		"diagram.txt":     false,
		"-":               false,
	}
	for in, want := range tests {
		if got := isBasePath(in); got != want {
			t.Errorf("isBasePath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	artifacts := map[string][]byte{
		pipeline.FormatSVG:         []byte("<svg/>"),
		pipeline.FormatText:        []byte("text"),
		pipeline.FormatNodelinkSVG: []byte("<svg nodelink/>"),
	}

	t.Run("single format to explicit file", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		path := filepath.Join(t.TempDir(), "nested", "out.svg")
		paths, err := c.writeArtifacts(artifacts, []string{"svg"}, path, "ignored")
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) != 1 || paths[0] != path {
			t.Errorf("paths = %v, want [%s]", paths, path)
		}
		if data, _ := os.ReadFile(path); string(data) != "<svg/>" {
			t.Errorf("file = %q", data)
		}
	})

	t.Run("single format to stdout", func(t *testing.T) {
		var out bytes.Buffer
		c := New(io.Discard, LogInfo)
		c.SetOutput(&out)
		paths, err := c.writeArtifacts(artifacts, []string{"txt"}, "-", "ignored")
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) != 0 || out.String() != "text" {
			t.Errorf("paths = %v, out = %q", paths, out.String())
		}
	})

	t.Run("several formats use the base", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		base := filepath.Join(t.TempDir(), "diagram")
		paths, err := c.writeArtifacts(artifacts, []string{"svg", "nodelink-svg"}, "", base)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{base + ".svg", base + ".nodelink.svg"}
		if !slices.Equal(paths, want) {
			t.Errorf("paths = %v, want %v", paths, want)
		}
	})
}

func TestRenderCommand(t *testing.T) {
	schema := writeSchema(t)
	base := filepath.Join(t.TempDir(), "out", "schema")

	out, err := runCLI(t, "render", "-f", "svg,txt,json", "-o", base, schema)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Render complete") {
		t.Errorf("output = %q, want completion message", out)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil || !strings.Contains(string(svg), "<svg") {
		t.Errorf("schema.svg = %q, %v", svg, err)
	}
	txt, err := os.ReadFile(base + ".txt")
	if err != nil || !strings.Contains(string(txt), "Users") {
		t.Errorf("schema.txt = %q, %v", txt, err)
	}

	gl, err := graph.ReadLayoutFile(base + ".json")
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(gl.Nodes) != 2 {
		t.Errorf("layout nodes = %d, want 2", len(gl.Nodes))
	}
}

func TestRenderCommandStdout(t *testing.T) {
	out, err := runCLI(t, "render", "-f", "txt", "-o", "-", writeSchema(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Users") || strings.Contains(out, "Render complete") {
		t.Errorf("stdout render = %q, want only the diagram", out)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"render", "-f", "gif", "schema.json"}},
		{"no source", []string{"render"}},
		{"missing file", []string{"render", "does-not-exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	schema := writeSchema(t)
	doc := filepath.Join(t.TempDir(), "schema.layout.json")

	out, err := runCLI(t, "layout", "-o", doc, schema)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "render --layout "+doc) {
		t.Errorf("layout output = %q, want a next step", out)
	}

	svg, err := runCLI(t, "render", "--layout", doc, "-f", "svg", "-o", "-")
	if err != nil {
		t.Fatalf("render --layout: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Errorf("render --layout = %q, want SVG", svg)
	}
}

func TestListCommand(t *testing.T) {
	out, err := runCLI(t, "list", writeSchema(t))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Users", "orders", "owner", "2 collections"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}
