package source

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schematic/pkg/cache"
	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/observability"
)

// Cached serves List from a cache, falling back to the wrapped source.
type Cached struct {
	Source Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	// Refresh skips the lookup but still stores the fresh result.
	Refresh bool
	Logger  *log.Logger
}

// NewCached wraps s with the default keyer and TTL.
func NewCached(s Source, c cache.Cache) *Cached {
	return &Cached{Source: s, Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: cache.TTLCollections}
}

// Name returns the wrapped source's name.
func (c *Cached) Name() string { return c.Source.Name() }

// List returns the cached list when present. Cache failures are logged and
// treated as misses.
func (c *Cached) List(ctx context.Context) ([]collection.Collection, error) {
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	keyer := c.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.CollectionsKey(c.Source.Name())
	hooks := observability.Cache()

	if !c.Refresh {
		var list collection.List
		err := cache.GetJSON(ctx, c.Cache, key, &list)
		switch {
		case err == nil:
			hooks.OnCacheHit(ctx, "collections")
			return list.Collections, nil
		case errors.Is(err, cache.ErrCacheMiss):
			hooks.OnCacheMiss(ctx, "collections")
		default:
			logger.Warn("collection cache read failed", "source", c.Source.Name(), "err", err)
		}
	}

	cs, err := c.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(collection.List{Collections: cs})
	if err == nil {
		err = c.Cache.Set(ctx, key, data, c.TTL)
	}
	if err != nil {
		logger.Warn("collection cache write failed", "source", c.Source.Name(), "err", err)
	} else {
		hooks.OnCacheSet(ctx, "collections", len(data))
	}
	return cs, nil
}
