package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/internal/server"
	"github.com/matzehuels/schematic/pkg/observability"
	"github.com/matzehuels/schematic/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src sourceFlags
		cfg server.Config
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve [schema.json|schema.toml ...]",
		Short: "Serve the diagram and interactive viewer sessions over HTTP",
		Long: `Serve the diagram over HTTP.

Endpoints:
  GET    /schematic.svg, /schematic.txt, /schematic.dot, /nodelink.svg, /layout.json,
         /graph.json
  POST   /sessions                 start a viewer session
  GET    /sessions/{id}            session state
  POST   /sessions/{id}/events     pointer, wheel, click and view events
  GET    /sessions/{id}/scene.svg  the session's current view
  DELETE /sessions/{id}
  GET    /collections/{key}        redirect to the console (needs --console)

Collections are fetched per request through the cache, so edits to the
source show up once the cached list expires (or with ?refresh=true).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, &src, opts, cfg)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&cfg.Addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&cfg.ConsoleURL, "console", "", "console base URL for navigation redirects")
	cmd.Flags().DurationVar(&cfg.SessionTTL, "session-ttl", 0, "idle viewer session lifetime (default 30m)")
	cmd.Flags().BoolVar(&opts.Overlay, "overlay", true, "draw the overlay on /schematic.svg")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, files []string, src *sourceFlags, opts pipeline.Options, cfg server.Config) error {
	if cfg.Addr == "" {
		cfg.Addr = c.Config.Server.Addr
	}
	if cfg.ConsoleURL == "" {
		cfg.ConsoleURL = c.Config.Server.ConsoleURL
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = c.Config.Server.SessionTTL.Duration
	}

	l, err := c.open(ctx, src, files, opts)
	if err != nil {
		return err
	}
	defer l.Close()

	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.SetInteractionHooks(&logHooks{logger: c.Logger})
	}

	srv, err := server.New(cfg, l.runner, l.src, l.opts, c.Logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	addr := cfg.Addr
	if addr == "" {
		addr = server.DefaultAddr
	}
	printSuccess(c.out, "Serving %s", l.src.Name())
	printKeyValue(c.out, "Diagram", StyleLink.Render("http://"+addr+"/schematic.svg"))
	printKeyValue(c.out, "Sessions", "http://"+addr+"/sessions")
	if cfg.ConsoleURL != "" {
		printKeyValue(c.out, "Console", cfg.ConsoleURL)
	}

	return srv.ListenAndServe(ctx)
}
