// Package cache provides the caching layer for archview graphs and
// rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [NullCache]: stores nothing (--no-cache)
//   - [RedisCache]: shared cache for the HTTP server
//   - [MongoCache]: document-store cache with TTL expiry
//
// # Keys
//
// A [Keyer] turns inputs into cache keys. Graph keys hash the document
// content together with the layout settings, so a changed document or a
// changed setting never reads a stale graph. [ScopedKeyer] prefixes keys
// for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss with ok=false and a nil error; errors are reserved for
// backend failures. A zero ttl means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry type.
const (
	// TTLGraph is the lifetime of a laid-out graph. Keys include the
	// document hash, so entries only go stale by disuse.
	TTLGraph = 7 * 24 * time.Hour

	// TTLRender is the lifetime of a rendered artifact (SVG or DOT).
	TTLRender = 24 * time.Hour
)
