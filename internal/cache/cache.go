// Package cache provides the key-value cache used in front of the durable
// store. The cache is a performance optimization, never a correctness
// dependency: every operation degrades to a miss or no-op on failure.
package cache

import (
	"context"
	"time"
)

// Cache is a key-value store with TTL support. Implementations must never
// return an error to callers; connectivity loss is reported through the
// boolean result.
type Cache interface {
	// Get returns the value for key, or ok=false on a miss or any failure.
	Get(ctx context.Context, key string) (value string, ok bool)

	// Set stores value under key with the given TTL. A zero TTL means no
	// expiry. Returns false on failure.
	Set(ctx context.Context, key, value string, ttl time.Duration) bool

	// Delete removes key. Returns false on failure.
	Delete(ctx context.Context, key string) bool

	// IncrementWithTTL atomically increments the counter at key and returns
	// the new value. The TTL is applied only when the increment created the
	// key. Returns ok=false on failure.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (count int64, ok bool)
}
