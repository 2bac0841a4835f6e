package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/pkg/cache"
	"github.com/matzehuels/schematic/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "schematic"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (not logs).
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, loggerFromContext(ctx)), nil
}

// newCache opens the configured backend. Without configuration the file
// cache under the XDG cache directory is used.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache.Config
	if cfg.Backend == "" {
		cfg.Backend = cache.BackendFile
	}
	if cfg.Backend == cache.BackendFile && cfg.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}
	return cache.Open(ctx, cfg)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/schematic/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// =============================================================================
// Options Helpers
// =============================================================================

// sourceFlags are the flags every command that reads collections accepts.
type sourceFlags struct {
	url      string
	token    string
	dsn      string
	mongo    string
	database string
	table    string
	noCache  bool
	refresh  bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "console base URL to list collections from")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token for --url (default $SCHEMATIC_TOKEN)")
	cmd.Flags().StringVar(&f.dsn, "postgres", "", "Postgres DSN to read collection metadata from")
	cmd.Flags().StringVar(&f.table, "table", "", "table or collection holding collection metadata")
	cmd.Flags().StringVar(&f.database, "mongo-db", "", "Mongo database (requires --mongo)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached collection lists")
	cmd.Flags().StringVar(&f.mongo, "mongo", "", "Mongo URI to read collection metadata from")
}

// specs turns positional schema files and source flags into source specs.
// Files come first; earlier sources win on duplicate IDs.
func (f *sourceFlags) specs(files []string) []pipeline.SourceSpec {
	var specs []pipeline.SourceSpec
	for _, path := range files {
		specs = append(specs, pipeline.SourceSpec{Kind: pipeline.SourceFile, Path: path})
	}
	if f.url != "" {
		token := f.token
		if token == "" {
			token = os.Getenv("SCHEMATIC_TOKEN")
		}
		specs = append(specs, pipeline.SourceSpec{Kind: pipeline.SourceConnect, URL: f.url, Token: token})
	}
	if f.dsn != "" {
		specs = append(specs, pipeline.SourceSpec{Kind: pipeline.SourcePostgres, DSN: f.dsn, Table: f.table})
	}
	if f.mongo != "" {
		specs = append(specs, pipeline.SourceSpec{Kind: pipeline.SourceMongo, DSN: f.mongo, Database: f.database, Table: f.table})
	}
	return specs
}

// options builds pipeline options from flags, then the config file, then
// defaults.
func (c *CLI) options(f *sourceFlags, files []string, opts pipeline.Options, requireSource bool) (pipeline.Options, error) {
	opts.Sources = f.specs(files)
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	c.Config.apply(&opts)
	if requireSource && len(opts.Sources) == 0 {
		return opts, errNoSource
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

var errNoSource = errors.New("no collection source: pass a schema file, --url, --postgres or --mongo, or set [source] in the config file")

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
