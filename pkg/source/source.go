// Package source loads collection lists from the places a console keeps
// them.
//
// Every backend implements [Source]:
//
//   - [File]: a JSON or TOML schema file
//   - [Connect]: the console's ListCollections RPC over HTTP
//   - [Postgres]: the collections_meta table
//   - [Mongo]: a collections_meta document collection
//
// [Multi] merges several sources concurrently, and [Cached] puts a
// [cache.Cache] in front of any of them.
//
// [cache.Cache]: github.com/matzehuels/schematic/pkg/cache
package source

import (
	"context"
	"errors"

	"github.com/matzehuels/schematic/pkg/collection"
)

var (
	// ErrNotFound is returned when the schema file, endpoint or table does
	// not exist.
	ErrNotFound = errors.New("source not found")

	// ErrUnauthorized is returned when the backend rejects the credentials.
	ErrUnauthorized = errors.New("source unauthorized")
)

// Source lists the collections of one backend.
type Source interface {
	// List returns the collections in the backend's order.
	List(ctx context.Context) ([]collection.Collection, error)
	// Name identifies the source in logs and cache keys.
	Name() string
}
