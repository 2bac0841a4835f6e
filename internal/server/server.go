// Package server serves schema diagrams over HTTP.
//
// Static endpoints render the current collections on every request (with
// artifact caching in the pipeline runner). Viewer sessions keep a live
// diagram per client so pointer events, wheel zoom and view commands can be
// posted and the resulting view fetched back as SVG.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/schematic/pkg/pipeline"
	"github.com/matzehuels/schematic/pkg/session"
	"github.com/matzehuels/schematic/pkg/source"
)

// Defaults for Config.
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultJanitorInterval = time.Minute
)

// Config configures the server.
type Config struct {
	Addr string
	// ConsoleURL is the console base URL navigation redirects point at.
	// Empty disables /collections/{key}.
	ConsoleURL     string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = session.DefaultTTL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	c.ConsoleURL = strings.TrimRight(c.ConsoleURL, "/")
	return c
}

// Server wires the pipeline, a collection source and the session store
// into a chi router.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	src      source.Source
	opts     pipeline.Options
	sessions *session.MemoryStore
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. opts are the base render options; requests may
// override the view settings through query parameters.
func New(cfg Config, runner *pipeline.Runner, src source.Source, opts pipeline.Options, logger *log.Logger) (*Server, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		src:      src,
		opts:     opts,
		sessions: session.NewMemoryStore(cfg.SessionTTL),
		logger:   logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the session store.
func (s *Server) Sessions() *session.MemoryStore { return s.sessions }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Get("/schematic.svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/schematic.txt", s.handleArtifact(pipeline.FormatText, "text/plain; charset=utf-8"))
	r.Get("/schematic.dot", s.handleArtifact(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
	r.Get("/nodelink.svg", s.handleArtifact(pipeline.FormatNodelinkSVG, "image/svg+xml"))
	r.Get("/layout.json", s.handleArtifact(pipeline.FormatJSON, "application/json"))
	r.Get("/graph.json", s.handleArtifact(pipeline.FormatGraph, "application/json"))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/events", s.handleEvents)
			r.Get("/scene.svg", s.handleSessionScene)
		})
	})

	r.Get("/collections/{key}", s.handleNavigate)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.Janitor(janitorCtx, DefaultJanitorInterval, func(n int) {
		s.logger.Debug("expired sessions removed", "count", n)
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// logRequests logs each request with charm log once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
