package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically purges click events that fell out of the retention
// window.
type Janitor struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	now      func() time.Time
}

// NewJanitor creates a retention janitor. A non-positive interval defaults
// to once per day.
func NewJanitor(store Store, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &Janitor{
		store:    store,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the purge loop. An initial purge runs immediately.
func (j *Janitor) Start(ctx context.Context) error {
	ctx, j.cancel = context.WithCancel(ctx)

	go j.run(ctx)

	return nil
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	cutoff := j.now().Add(-RetentionWindow)

	purged, err := j.store.PurgeClicksBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("click retention purge failed", zap.Error(err))

		return
	}

	if purged > 0 {
		j.logger.Info("purged expired click events",
			zap.Int64("count", purged),
			zap.Time("cutoff", cutoff),
		)
	}
}

// Shutdown stops the purge loop and waits for it to exit.
func (j *Janitor) Shutdown() error {
	if j.cancel != nil {
		j.cancel()
	}

	<-j.done

	return nil
}
