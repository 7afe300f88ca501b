package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// Memory is an in-memory Cache for tests and single-process setups.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates a new in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock swaps the clock used for expiry decisions.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false
	}

	if entry.expired(m.now()) {
		delete(m.entries, key)

		return "", false
	}

	return entry.value, true
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.expiry(ttl),
	}

	return true
}

func (m *Memory) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return true
}

func (m *Memory) IncrementWithTTL(_ context.Context, key string, ttl time.Duration) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	entry, ok := m.entries[key]
	if ok && entry.expired(now) {
		ok = false
	}

	var count int64 = 1

	if ok {
		prev, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, false
		}

		count = prev + 1
		// TTL is only set when the increment creates the key.
		entry.value = strconv.FormatInt(count, 10)
		m.entries[key] = entry

		return count, true
	}

	m.entries[key] = memoryEntry{
		value:     strconv.FormatInt(count, 10),
		expiresAt: m.expiry(ttl),
	}

	return count, true
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return m.now().Add(ttl)
}

// Compile-time check.
var _ Cache = (*Memory)(nil)
