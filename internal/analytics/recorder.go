package analytics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/linkpulse/internal/cache"
	"github.com/serroba/linkpulse/internal/enrich"
	"github.com/serroba/linkpulse/internal/shortener"
	"go.uber.org/zap"
)

// counterTTL is the expiry of the day-scoped click counters in the cache.
const counterTTL = 24 * time.Hour

// Recorder turns raw visits into persisted click events and counter
// increments. It never reports failure to its caller: each write is
// best-effort, failures are logged and counted.
type Recorder struct {
	store    Store
	links    shortener.Repository
	cache    cache.Cache
	enricher *enrich.Enricher
	logger   *zap.Logger
	dropped  atomic.Int64
	now      func() time.Time
}

// NewRecorder creates a click recorder.
func NewRecorder(
	store Store,
	links shortener.Repository,
	cacheLayer cache.Cache,
	enricher *enrich.Enricher,
	logger *zap.Logger,
) *Recorder {
	return &Recorder{
		store:    store,
		links:    links,
		cache:    cacheLayer,
		enricher: enricher,
		logger:   logger,
		now:      time.Now,
	}
}

// Record enriches and persists a single visit. The three persistence actions
// (event write, cache counter, durable click counter) run concurrently; none
// blocks or aborts the others.
func (r *Recorder) Record(ctx context.Context, raw *ClickRaised) {
	event := r.buildEvent(raw)

	var wg sync.WaitGroup

	wg.Add(3)

	go func() {
		defer wg.Done()

		if err := r.store.SaveClick(ctx, event); err != nil {
			r.drop("save click event", raw.Code, err)
		}
	}()

	go func() {
		defer wg.Done()

		key := DayCounterKey(raw.Code, event.Timestamp)
		if _, ok := r.cache.IncrementWithTTL(ctx, key, counterTTL); !ok {
			r.drop("increment cache counter", raw.Code, nil)
		}
	}()

	go func() {
		defer wg.Done()

		if err := r.links.IncrementClicks(ctx, shortener.Code(raw.Code)); err != nil {
			r.drop("increment click counter", raw.Code, err)
		}
	}()

	wg.Wait()
}

func (r *Recorder) buildEvent(raw *ClickRaised) *ClickEvent {
	ts := raw.At
	if ts.IsZero() {
		ts = r.now()
	}

	referrer := raw.Referrer
	if referrer == "" {
		referrer = DirectReferrer
	}

	return &ClickEvent{
		ID:        uuid.NewString(),
		LinkID:    raw.LinkID,
		Code:      raw.Code,
		Timestamp: ts,
		Visitor:   newVisitor(raw.IP, raw.UserAgent, r.enricher.Visit(raw.UserAgent, raw.IP)),
		Referrer:  referrer,
		IsBot:     IsBot(raw.UserAgent),
	}
}

// Dropped returns how many best-effort writes have been lost so far.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) drop(action, code string, err error) {
	r.dropped.Add(1)
	r.logger.Warn("analytics write dropped",
		zap.String("action", action),
		zap.String("code", code),
		zap.Error(err),
	)
}

// DayCounterKey is the cache key of the day-scoped click counter for a code.
func DayCounterKey(code string, ts time.Time) string {
	return fmt.Sprintf("clicks:%s:%s", code, ts.UTC().Format("2006-01-02"))
}
