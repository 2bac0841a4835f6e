// Package cache stores fetched collection lists and rendered artifacts.
//
// Backends share the [Cache] interface: [FileCache] for the CLI,
// [RedisCache] for the server, and [NullCache] to disable caching. Keys come
// from a [Keyer] so that callers never build them by hand.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLCollections = 10 * time.Minute
	TTLArtifact    = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss as (nil, false, nil); an error means the backend failed.
// A ttl of 0 stores without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and decodes it into v. Returns ErrCacheMiss when the key
// is absent.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, v)
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// =============================================================================
// Keys
// =============================================================================

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// CollectionsKey identifies a source's collection list.
	CollectionsKey(source string) string
	// LayoutKey identifies a layout computed from a collection set.
	LayoutKey(collectionsHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the result.
type LayoutKeyOpts struct {
	NodeWidth     float64 `json:"node_width"`
	NodeHeight    float64 `json:"node_height"`
	HorizontalGap float64 `json:"horizontal_gap"`
	LevelHeight   float64 `json:"level_height"`
	TopMargin     float64 `json:"top_margin"`
	LeftMargin    float64 `json:"left_margin"`
}

// ArtifactKeyOpts are the render options that change the output bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Zoom       float64 `json:"zoom"`
	PanX       float64 `json:"pan_x"`
	PanY       float64 `json:"pan_y"`
	Overlay    bool    `json:"overlay"`
	Dots       bool    `json:"dots"`
	Detailed   bool    `json:"detailed"`
	EdgeLabels bool    `json:"edge_labels"`
	Scale      float64 `json:"scale,omitempty"`
	Links      string  `json:"links,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// CollectionsKey returns "collections:<source>".
func (DefaultKeyer) CollectionsKey(source string) string {
	return "collections:" + source
}

// LayoutKey hashes the collection hash with the layout options.
func (DefaultKeyer) LayoutKey(collectionsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", collectionsHash, opts)
}

// ArtifactKey hashes the layout hash with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
