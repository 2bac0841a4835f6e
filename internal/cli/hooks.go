package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schematic/pkg/observability"
)

// logHooks reports pipeline, cache, HTTP and canvas events at debug level.
type logHooks struct {
	logger *log.Logger
}

// EnableDebugHooks routes observability events to the CLI logger. Canvas
// events are left out because the terminal viewer owns the screen; serve
// adds them itself.
func (c *CLI) EnableDebugHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnFetchStart(_ context.Context, source string) {
	h.logger.Debug("fetch", "source", source)
}

func (h *logHooks) OnFetchComplete(_ context.Context, source string, n int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("fetched", "source", source, "collections", n, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.logger.Debug("layout", "collections", nodes)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, levels int, d time.Duration, err error) {
	h.logger.Debug("laid out", "levels", levels, "took", d.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("rendered", "formats", formats, "took", d.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http done", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *logHooks) OnNavigate(routeKey string) {
	h.logger.Debug("navigate", "collection", routeKey)
}

func (h *logHooks) OnClickSuppressed() {
	h.logger.Debug("click suppressed after drag")
}

func (h *logHooks) OnZoom(from, to float64) {
	h.logger.Debug("zoom", "from", from, "to", to)
}
