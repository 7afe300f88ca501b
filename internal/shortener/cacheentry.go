package shortener

import (
	"encoding/json"
	"time"
)

// linkCacheTTL is the expiry of cached link projections.
const linkCacheTTL = time.Hour

// CacheEntry is the ephemeral projection of a ShortLink stored in the cache.
// Activity state is embedded so the resolver can trust a hit within the TTL
// without re-reading the store.
type CacheEntry struct {
	LinkID      string     `json:"linkId"`
	Code        string     `json:"shortCode"`
	OriginalURL string     `json:"originalUrl"`
	IsActive    bool       `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the cached link's expiry has passed.
func (e *CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

func newCacheEntry(link *ShortLink) *CacheEntry {
	return &CacheEntry{
		LinkID:      link.ID,
		Code:        string(link.Code),
		OriginalURL: link.OriginalURL,
		IsActive:    link.IsActive,
		ExpiresAt:   link.ExpiresAt,
	}
}

func (e *CacheEntry) encode() (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", err
	}

	return string(payload), nil
}

func decodeCacheEntry(payload string) (*CacheEntry, error) {
	var entry CacheEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// LinkCacheKey is the cache key of a link projection.
func LinkCacheKey(code Code) string {
	return "url:" + string(code)
}
