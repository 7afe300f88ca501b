// Package ratelimit provides sliding-window rate limiting for the HTTP
// surface. Limits are configured per endpoint through operation metadata.
package ratelimit

import (
	"context"
	"time"
)

// Store is the backing storage for rate limit counters.
type Store interface {
	// Record records a request under key and returns the number of requests
	// in the current window, pruning expired entries.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// Limiter checks whether a request from the given key should be allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// SlidingWindowLimiter limits requests using a sliding window over a Store.
type SlidingWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a sliding window rate limiter.
func NewSlidingWindowLimiter(store Store, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}
