package analytics

import (
	"context"
	"time"
)

// Store persists and queries click events.
type Store interface {
	SaveClick(ctx context.Context, event *ClickEvent) error

	// ClicksSince returns every click for a link with timestamp >= since.
	ClicksSince(ctx context.Context, linkID string, since time.Time) ([]*ClickEvent, error)

	// ClicksPerDaySince returns the global per-day click counts since the
	// given time, ordered by date ascending.
	ClicksPerDaySince(ctx context.Context, since time.Time) ([]DayCount, error)

	// PurgeClicksBefore deletes events older than cutoff and returns how
	// many were removed.
	PurgeClicksBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
