package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/linkpulse/internal/analytics"
	"github.com/serroba/linkpulse/internal/shortener"
)

// MemoryStore is an in-memory twin of PostgresStore for unit tests. It
// implements both shortener.Repository and analytics.Store.
type MemoryStore struct {
	mu     sync.Mutex
	links  map[shortener.Code]*shortener.ShortLink
	clicks []*analytics.ClickEvent
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[shortener.Code]*shortener.ShortLink),
	}
}

func (m *MemoryStore) Create(_ context.Context, link *shortener.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[link.Code]; exists {
		return shortener.ErrCodeTaken
	}

	if link.CustomAlias != "" {
		for _, existing := range m.links {
			if existing.CustomAlias == link.CustomAlias {
				return shortener.ErrCodeTaken
			}
		}
	}

	m.links[link.Code] = copyLink(link)

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return copyLink(link), nil
}

func (m *MemoryStore) GetActiveByCode(_ context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok || !link.IsActive {
		return nil, shortener.ErrNotFound
	}

	return copyLink(link), nil
}

func (m *MemoryStore) Deactivate(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return shortener.ErrNotFound
	}

	link.IsActive = false

	return nil
}

func (m *MemoryStore) IncrementClicks(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return shortener.ErrNotFound
	}

	link.Clicks++

	return nil
}

func (m *MemoryStore) UpdateMeta(_ context.Context, code shortener.Code, tags []string, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return shortener.ErrNotFound
	}

	link.Tags = append([]string(nil), tags...)
	link.ExpiresAt = expiresAt

	return nil
}

func (m *MemoryStore) ListActive(_ context.Context, offset, limit int) ([]*shortener.ShortLink, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.activeLinks()

	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	total := int64(len(active))

	if offset >= len(active) {
		return nil, total, nil
	}

	active = active[offset:]
	if limit > 0 && limit < len(active) {
		active = active[:limit]
	}

	return active, total, nil
}

func (m *MemoryStore) CountActive(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.activeLinks())), nil
}

func (m *MemoryStore) SumClicks(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum int64

	for _, link := range m.links {
		if link.IsActive {
			sum += link.Clicks
		}
	}

	return sum, nil
}

func (m *MemoryStore) TopByClicks(_ context.Context, n int) ([]*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.activeLinks()

	sort.Slice(active, func(i, j int) bool {
		if active[i].Clicks != active[j].Clicks {
			return active[i].Clicks > active[j].Clicks
		}

		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	if n < len(active) {
		active = active[:n]
	}

	return active, nil
}

func (m *MemoryStore) RecentlyCreated(_ context.Context, n int) ([]*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.activeLinks()

	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	if n < len(active) {
		active = active[:n]
	}

	return active, nil
}

func (m *MemoryStore) SaveClick(_ context.Context, event *analytics.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *event
	m.clicks = append(m.clicks, &clone)

	return nil
}

func (m *MemoryStore) ClicksSince(_ context.Context, linkID string, since time.Time) ([]*analytics.ClickEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []*analytics.ClickEvent

	for _, event := range m.clicks {
		if event.LinkID == linkID && !event.Timestamp.Before(since) {
			clone := *event
			events = append(events, &clone)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events, nil
}

func (m *MemoryStore) ClicksPerDaySince(_ context.Context, since time.Time) ([]analytics.DayCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDay := make(map[string]int64)

	for _, event := range m.clicks {
		if !event.Timestamp.Before(since) {
			byDay[event.Timestamp.UTC().Format("2006-01-02")]++
		}
	}

	series := make([]analytics.DayCount, 0, len(byDay))

	for date, clicks := range byDay {
		series = append(series, analytics.DayCount{Date: date, Clicks: clicks})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	return series, nil
}

func (m *MemoryStore) PurgeClicksBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.clicks[:0]

	var purged int64

	for _, event := range m.clicks {
		if event.Timestamp.Before(cutoff) {
			purged++

			continue
		}

		kept = append(kept, event)
	}

	m.clicks = kept

	return purged, nil
}

// ClickCount reports how many click events are stored. Test helper.
func (m *MemoryStore) ClickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.clicks)
}

func (m *MemoryStore) activeLinks() []*shortener.ShortLink {
	var active []*shortener.ShortLink

	for _, link := range m.links {
		if link.IsActive {
			active = append(active, copyLink(link))
		}
	}

	return active
}

func copyLink(link *shortener.ShortLink) *shortener.ShortLink {
	clone := *link
	clone.Tags = append([]string(nil), link.Tags...)

	if link.ExpiresAt != nil {
		expiresAt := *link.ExpiresAt
		clone.ExpiresAt = &expiresAt
	}

	return &clone
}

// Compile-time checks.
var (
	_ shortener.Repository = (*MemoryStore)(nil)
	_ analytics.Store      = (*MemoryStore)(nil)
)
