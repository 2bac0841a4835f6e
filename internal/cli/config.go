package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/schematic/pkg/cache"
	"github.com/matzehuels/schematic/pkg/pipeline"
	"github.com/matzehuels/schematic/pkg/schematic"
)

// =============================================================================
// Config File
// =============================================================================

// Config is the optional config file. Every field is optional; flags set on
// the command line take precedence.
//
//	[source]
//	kind = "connect"
//	url = "https://console.example.com"
//
//	[viewport]
//	min_zoom = 0.2
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
type Config struct {
	Source      pipeline.SourceSpec `toml:"source"`
	Layout      schematic.Options   `toml:"layout"`
	Viewport    ViewportConfig      `toml:"viewport"`
	Interaction InteractionConfig   `toml:"interaction"`
	Cache       CacheConfig         `toml:"cache"`
	Server      ServerConfig        `toml:"server"`
}

// ViewportConfig holds canvas and zoom settings.
type ViewportConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	MinZoom   float64 `toml:"min_zoom"`
	MaxZoom   float64 `toml:"max_zoom"`
	FitMargin float64 `toml:"fit_margin"`
}

// InteractionConfig holds drag detection settings.
type InteractionConfig struct {
	DragThreshold float64 `toml:"drag_threshold"`
	GraceMS       int     `toml:"grace_ms"`
}

// CacheConfig selects the cache backend. Dir defaults to the XDG cache
// directory for the file backend.
type CacheConfig struct {
	cache.Config
	TTL duration `toml:"ttl"`
}

// ServerConfig configures `schematic serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	ConsoleURL string   `toml:"console_url"`
	SessionTTL duration `toml:"session_ttl"`
}

// duration decodes TOML strings such as "30m".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// configPath returns $XDG_CONFIG_HOME/schematic/config.toml, falling back
// to ~/.config.
func configPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// xdgDir is $env/schematic, or ~/fallback/schematic when env is unset.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, fallback, appName), nil
}

// loadConfig reads path. When path is empty the default location is tried
// and a missing file yields an empty config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, keys[0].String())
	}
	return cfg, nil
}

// apply copies config values into opts wherever opts are still unset.
func (c Config) apply(opts *pipeline.Options) {
	if len(opts.Sources) == 0 && c.Source.Kind != "" {
		opts.Sources = []pipeline.SourceSpec{c.Source}
	}

	g := &opts.Grid
	setFloat(&g.NodeWidth, c.Layout.NodeWidth)
	setFloat(&g.NodeHeight, c.Layout.NodeHeight)
	setFloat(&g.HorizontalGap, c.Layout.HorizontalGap)
	setFloat(&g.LevelHeight, c.Layout.LevelHeight)
	setFloat(&g.TopMargin, c.Layout.TopMargin)
	setFloat(&g.LeftMargin, c.Layout.LeftMargin)

	setFloat(&opts.Width, c.Viewport.Width)
	setFloat(&opts.Height, c.Viewport.Height)
	setFloat(&opts.MinZoom, c.Viewport.MinZoom)
	setFloat(&opts.MaxZoom, c.Viewport.MaxZoom)
	setFloat(&opts.FitMargin, c.Viewport.FitMargin)

	setFloat(&opts.DragThreshold, c.Interaction.DragThreshold)
	if opts.Grace == 0 && c.Interaction.GraceMS > 0 {
		opts.Grace = time.Duration(c.Interaction.GraceMS) * time.Millisecond
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = c.Cache.TTL.Duration
	}
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 && v > 0 {
		*dst = v
	}
}
