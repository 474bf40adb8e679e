// Package cache provides byte caching for parsed documents, rendered
// artifacts, and fetched remote sources.
//
// Three backends cover the deployment modes: [FileCache] for local CLI
// runs, [RedisCache] for the render service where workers share one
// instance, and [NullCache] for disabled caching. Keys are derived
// through a [Keyer] so every pipeline stage uses a stable, deterministic
// key scheme; [ScopedKeyer] adds a prefix for per-tenant isolation in
// service deployments.
package cache

import (
	"context"
	"time"
)

// Time-to-live per entry kind. Documents are keyed by content hash, so
// stale entries are impossible; the TTLs only bound storage growth.
const (
	TTLDocument = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends. Implementations
// store opaque bytes under string keys with optional expiry.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was
	// present and unexpired; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 stores the entry without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
