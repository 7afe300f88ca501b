package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore keeps a per-key log of request timestamps for
// sliding-window rate limiting. Stale timestamps are pruned on every Record,
// so memory stays bounded by the request rate within the window.
type RateLimitMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewRateLimitMemoryStore creates an in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		hits: make(map[string][]time.Time),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	// Prune in place; the backing array is reused across calls.
	kept := s.hits[key][:0]
	for _, ts := range s.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	kept = append(kept, now)
	s.hits[key] = kept

	return int64(len(kept)), nil
}
