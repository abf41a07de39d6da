// Package cache stores pipeline results between runs.
//
// Diagrams, rendered artifacts and experiment results are deterministic
// functions of their inputs, so they can be cached under a key derived from
// those inputs and served again without recomputing.
//
// # Backends
//
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// # Keys
//
// A [Keyer] turns inputs into keys. [DefaultKeyer] hashes the options of each
// request so that changing any option produces a different key;
// [ScopedKeyer] prefixes every key to keep namespaces apart.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind. Zero means the entry never expires.
const (
	TTLDiagram    = 7 * 24 * time.Hour
	TTLArtifact   = 7 * 24 * time.Hour
	TTLExperiment = 0
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get returns hit=false, err=nil on a miss. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
