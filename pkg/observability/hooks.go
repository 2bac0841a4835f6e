// Package observability lets the binary watch what the libraries do.
//
// Libraries report events through four small interfaces: [PipelineHooks],
// [CacheHooks], [HTTPHooks] and [InteractionHooks]. Each has a Noop
// implementation that is used until something else is registered, so the
// libraries work without any setup. Embed the Noop type to implement only
// the events you care about:
//
//	type fetchTimer struct{ observability.NoopPipelineHooks }
//
//	func (fetchTimer) OnFetchComplete(ctx context.Context, src string, n int, d time.Duration, err error) {
//	    metrics.Observe("fetch", src, d)
//	}
//
//	observability.SetPipelineHooks(fetchTimer{})
//
// The schematic CLI registers logging hooks when run with --verbose.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives the start and end of each pipeline stage.
type PipelineHooks interface {
	OnFetchStart(ctx context.Context, source string)
	OnFetchComplete(ctx context.Context, source string, collections int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, collections int)
	OnLayoutComplete(ctx context.Context, levels int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. kind is "collections" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks receives the console client's requests. OnError is for
// transport failures; HTTP error statuses arrive through OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, status int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// InteractionHooks receives canvas input outcomes. They run on the input
// loop and must not block.
type InteractionHooks interface {
	// OnNavigate is called for a click that opens a collection.
	OnNavigate(routeKey string)
	// OnClickSuppressed is called for a click that ended a drag.
	OnClickSuppressed()
	// OnZoom is called after a wheel zoom changed the zoom factor.
	OnZoom(from, to float64)
}

type (
	NoopPipelineHooks    struct{}
	NoopCacheHooks       struct{}
	NoopHTTPHooks        struct{}
	NoopInteractionHooks struct{}
)

func (NoopPipelineHooks) OnFetchStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

func (NoopInteractionHooks) OnNavigate(string)       {}
func (NoopInteractionHooks) OnClickSuppressed()      {}
func (NoopInteractionHooks) OnZoom(float64, float64) {}

// slot holds one registered hook set. The zero slot yields noop.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	pipeline    = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cache       = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpClient  = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
	interaction = slot[InteractionHooks]{noop: NoopInteractionHooks{}}
)

// SetPipelineHooks registers h. The Set functions ignore nil.
func SetPipelineHooks(h PipelineHooks)       { pipeline.set(h) }
func SetCacheHooks(h CacheHooks)             { cache.set(h) }
func SetHTTPHooks(h HTTPHooks)               { httpClient.set(h) }
func SetInteractionHooks(h InteractionHooks) { interaction.set(h) }

func Pipeline() PipelineHooks       { return pipeline.get() }
func Cache() CacheHooks             { return cache.get() }
func HTTP() HTTPHooks               { return httpClient.get() }
func Interaction() InteractionHooks { return interaction.get() }

// Reset puts the Noop hooks back. Tests that register hooks call it in
// cleanup.
func Reset() {
	pipeline.p.Store(nil)
	cache.p.Store(nil)
	httpClient.p.Store(nil)
	interaction.p.Store(nil)
}
