package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schematic/pkg/cache"
	"github.com/matzehuels/schematic/pkg/collection"
	errs "github.com/matzehuels/schematic/pkg/errors"
	"github.com/matzehuels/schematic/pkg/observability"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/source"
)

// Result holds the outputs of a pipeline run.
type Result struct {
	Collections []collection.Collection
	Diagram     *schematic.Diagram

	// CollectionsHash is the content hash of the fetched collections.
	CollectionsHash string

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timing and size information.
type Stats struct {
	Collections int
	Edges       int
	Levels      int
	Unresolved  int
	Cycles      int
	FetchTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	RenderHit bool // all artifacts came from cache
}

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute opens opts.Sources, fetches, builds and renders.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	src, closeSrc, err := OpenSource(ctx, opts.Sources)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	result := &Result{}

	start := time.Now()
	cs, err := r.Fetch(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	result.Collections = cs
	result.Stats.FetchTime = time.Since(start)

	start = time.Now()
	d, err := r.Build(ctx, cs, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(start)

	l := d.Layout()
	result.Stats.Collections = len(l.Nodes)
	result.Stats.Edges = len(l.Edges)
	result.Stats.Levels = l.Levels
	result.Stats.Unresolved = len(l.Unresolved)
	result.Stats.Cycles = len(l.CycleEdges)
	result.CollectionsHash = HashCollections(cs)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch lists collections from src through the runner's cache.
func (r *Runner) Fetch(ctx context.Context, src source.Source, opts Options) ([]collection.Collection, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, src.Name())
	start := time.Now()

	cached := source.NewCached(src, r.Cache)
	cached.Keyer = r.Keyer
	cached.Refresh = opts.Refresh
	cached.Logger = r.Logger
	if opts.CacheTTL > 0 {
		cached.TTL = opts.CacheTTL
	}

	cs, err := cached.List(ctx)
	hooks.OnFetchComplete(ctx, src.Name(), len(cs), time.Since(start), err)
	if err != nil {
		return nil, classify(src.Name(), err)
	}

	r.Logger.Info("fetched collections",
		"source", src.Name(),
		"collections", len(cs),
		"duration", time.Since(start))
	return cs, nil
}

// Build lays out the collections and applies the view options.
func (r *Runner) Build(ctx context.Context, cs []collection.Collection, opts Options) (*schematic.Diagram, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(cs))
	start := time.Now()

	d := NewDiagram(cs, opts)
	l := d.Layout()
	hooks.OnLayoutComplete(ctx, l.Levels, time.Since(start), nil)

	logLayout(r.Logger, l)
	r.Logger.Info("computed layout",
		"collections", len(l.Nodes),
		"edges", len(l.Edges),
		"levels", l.Levels,
		"duration", time.Since(start))
	return d, nil
}

// RenderWithCacheInfo renders opts.Formats and reports whether every
// artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *schematic.Diagram, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	layoutKey := r.Keyer.LayoutKey(HashCollections(d.Collections()), opts.LayoutKeyOpts())
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(layoutKey, opts.ArtifactKeyOpts(format, d.Viewport()))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			allCached = false
			break
		}
		artifacts[format] = data
	}
	if allCached {
		observability.Cache().OnCacheHit(ctx, "artifact")
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		if errs.GetCode(err) == "" {
			err = errs.Wrap(errs.ErrCodeInternal, err, "render")
		}
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutKey, opts.ArtifactKeyOpts(format, d.Viewport()))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, d *schematic.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// HashCollections returns a content hash of cs for cache keys. Map fields
// are encoded with sorted keys, so equal sets hash equally.
func HashCollections(cs []collection.Collection) string {
	data, err := json.Marshal(cs)
	if err != nil {
		return cache.Hash([]byte(fmt.Sprint(len(cs))))
	}
	return cache.Hash(data)
}
