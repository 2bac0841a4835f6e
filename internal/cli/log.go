// Package cli implements the schematic command-line interface.
//
// # Commands
//
//   - render: write the diagram as SVG, text, DOT, Graphviz SVG, JSON, PDF or PNG
//   - layout: write the layout document (levels, positions, viewport) as JSON
//   - list: print collections by level with their references
//   - view: explore the diagram in the terminal with mouse and keys
//   - serve: serve diagrams and interactive viewer sessions over HTTP
//   - cache: inspect or clear the cache
//
// Collections come from schema files given as arguments, from the console
// API (--url), from Postgres (--postgres) or Mongo (--mongo), or from the
// [source] table of the config file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports unresolved references and reference cycles.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps carry hundredths of a
// second so stage timings line up when --verbose is on.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs how long a command step took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, rounded to
// the millisecond, under "took".
func (s stopwatch) done(msg string, keyvals ...any) {
	took := time.Since(s.start).Round(time.Millisecond)
	s.logger.Info(msg, append(keyvals, "took", took)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger the root command attached, falling
// back to log.Default for code run outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}
