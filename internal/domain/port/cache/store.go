package cache

import (
	"context"
	"time"
)

// Store is a non-authoritative key/value cache. Payment state is never read
// from here; the transaction store stays the single source of truth.
type Store interface {
	// Get returns the cached value, or ok=false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
