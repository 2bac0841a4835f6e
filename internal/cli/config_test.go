package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/schematic/pkg/cache"
	"github.com/matzehuels/schematic/pkg/pipeline"
)

const testConfig = `
[source]
kind = "connect"
url = "https://console.example.com"

[layout]
node_width = 240

[viewport]
width = 1024
min_zoom = 0.2

[interaction]
drag_threshold = 8
grace_ms = 150

[cache]
backend = "redis"
ttl = "10m"
[cache.redis]
addr = "cache:6379"
prefix = "schematic:"

[server]
addr = ":9000"
console_url = "https://console.example.com"
session_ttl = "1h"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Source.Kind != pipeline.SourceConnect || cfg.Source.URL != "https://console.example.com" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Layout.NodeWidth != 240 {
		t.Errorf("Layout.NodeWidth = %v, want 240", cfg.Layout.NodeWidth)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.Redis.Addr != "cache:6379" || cfg.Cache.Redis.Prefix != "schematic:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL.Duration)
	}
	if cfg.Server.SessionTTL.Duration != time.Hour || cfg.Server.Addr != ":9000" {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[viewport]\nzoom_level = 2\n", "unknown key"},
		{"bad duration", "[server]\nsession_ttl = \"soon\"\n", "invalid duration"},
		{"bad syntax", "[viewport\n", "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg.Source.Kind != "" {
		t.Errorf("missing default config should be empty, got %+v", cfg)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestConfigApply(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("fills unset options", func(t *testing.T) {
		var opts pipeline.Options
		cfg.apply(&opts)

		if len(opts.Sources) != 1 || opts.Sources[0].Kind != pipeline.SourceConnect {
			t.Errorf("Sources = %+v", opts.Sources)
		}
		if opts.Grid.NodeWidth != 240 || opts.Width != 1024 || opts.MinZoom != 0.2 {
			t.Errorf("grid/viewport not applied: %+v", opts)
		}
		if opts.DragThreshold != 8 || opts.Grace != 150*time.Millisecond {
			t.Errorf("interaction not applied: threshold=%v grace=%v", opts.DragThreshold, opts.Grace)
		}
		if opts.CacheTTL != 10*time.Minute {
			t.Errorf("CacheTTL = %v, want 10m", opts.CacheTTL)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		opts := pipeline.Options{
			Sources: []pipeline.SourceSpec{{Kind: pipeline.SourceFile, Path: "schema.json"}},
			Width:   640,
		}
		cfg.apply(&opts)

		if len(opts.Sources) != 1 || opts.Sources[0].Kind != pipeline.SourceFile {
			t.Errorf("Sources = %+v, want the flag source only", opts.Sources)
		}
		if opts.Width != 640 {
			t.Errorf("Width = %v, want 640", opts.Width)
		}
		if opts.MinZoom != 0.2 {
			t.Errorf("MinZoom = %v, want 0.2 from config", opts.MinZoom)
		}
	})
}

func TestCachePathCommand(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{"default file cache", "", appName},
		{"explicit dir", "[cache]\ndir = \"/var/cache/schematic-test\"\n", "/var/cache/schematic-test"},
		{"redis", "[cache]\nbackend = \"redis\"\n[cache.redis]\naddr = \"cache:6379\"\n", "redis://cache:6379"},
		{"disabled", "[cache]\nbackend = \"none\"\n", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "--config", writeConfig(t, tt.config), "cache", "path")
			if err != nil {
				t.Fatalf("cache path: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("cache path = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	schema := writeSchema(t)
	dir := t.TempDir()
	cfg := writeConfig(t, "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	if _, err := runCLI(t, "--config", cfg, "render", "-f", "txt", "-o", "-", schema); err != nil {
		t.Fatalf("render: %v", err)
	}
	out, err := runCLI(t, "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared") || strings.Contains(out, "Cleared 0 ") {
		t.Errorf("cache clear = %q, want entries removed", out)
	}
}
