package shortener

import (
	"context"
	"time"
)

// Repository is the authoritative store for short links.
type Repository interface {
	// Create persists a new link. Returns ErrCodeTaken on a short-code or
	// custom-alias uniqueness violation.
	Create(ctx context.Context, link *ShortLink) error

	// GetByCode returns the link regardless of its active state.
	GetByCode(ctx context.Context, code Code) (*ShortLink, error)

	// GetActiveByCode returns the link only if it is still active.
	GetActiveByCode(ctx context.Context, code Code) (*ShortLink, error)

	// Deactivate flips the link inactive (soft delete). Idempotent.
	Deactivate(ctx context.Context, code Code) error

	// IncrementClicks atomically bumps the link's click counter.
	IncrementClicks(ctx context.Context, code Code) error

	// UpdateMeta replaces the link's tags and expiry.
	UpdateMeta(ctx context.Context, code Code, tags []string, expiresAt *time.Time) error

	// ListActive returns active links newest first, with the total count.
	ListActive(ctx context.Context, offset, limit int) ([]*ShortLink, int64, error)

	CountActive(ctx context.Context) (int64, error)
	SumClicks(ctx context.Context) (int64, error)
	TopByClicks(ctx context.Context, n int) ([]*ShortLink, error)
	RecentlyCreated(ctx context.Context, n int) ([]*ShortLink, error)
}
