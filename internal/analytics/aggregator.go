package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/serroba/linkpulse/internal/cache"
	"github.com/serroba/linkpulse/internal/shortener"
	"go.uber.org/zap"
)

const (
	// summaryTTL is how long computed summaries stay cached.
	summaryTTL = 5 * time.Minute

	overallStatsKey = "stats:overall"

	topLinksLimit    = 10
	recentLinksLimit = 5
	overallWindow    = 7 * 24 * time.Hour
)

// DayCount is one point of a per-day click time series.
type DayCount struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// BreakdownEntry is one row of a dimension breakdown, ordered by count
// descending, name ascending on ties.
type BreakdownEntry struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Summary is the aggregated view of one link's clicks over a window.
type Summary struct {
	Code             string           `json:"code"`
	OriginalURL      string           `json:"originalUrl"`
	CreatedAt        time.Time        `json:"createdAt"`
	TotalClicks      int64            `json:"totalClicks"`
	ClicksInPeriod   int64            `json:"clicksInPeriod"`
	ClicksByDate     []DayCount       `json:"clicksByDate"`
	Browsers         []BreakdownEntry `json:"browsers"`
	OperatingSystems []BreakdownEntry `json:"operatingSystems"`
	Devices          []BreakdownEntry `json:"devices"`
	Countries        []BreakdownEntry `json:"countries"`
	Referrers        []BreakdownEntry `json:"referrers"`
	Cached           bool             `json:"-"`
}

// LinkStat is a compact link projection used in overall statistics.
type LinkStat struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats aggregates across all active links.
type Stats struct {
	TotalLinks  int64      `json:"totalLinks"`
	TotalClicks int64      `json:"totalClicks"`
	TopLinks    []LinkStat `json:"topLinks"`
	RecentLinks []LinkStat `json:"recentLinks"`
	ClicksByDay []DayCount `json:"clicksByDay"`
	Cached      bool       `json:"-"`
}

// Aggregator computes time-bucketed, dimension-grouped click summaries with
// its own cache-aside layer.
type Aggregator struct {
	links  shortener.Repository
	store  Store
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates an analytics aggregator.
func NewAggregator(links shortener.Repository, store Store, cacheLayer cache.Cache, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		links:  links,
		store:  store,
		cache:  cacheLayer,
		logger: logger,
		now:    time.Now,
	}
}

// Summarize aggregates a link's clicks over the past windowDays days.
// Returns shortener.ErrNotFound when no link exists for the code.
func (a *Aggregator) Summarize(ctx context.Context, code string, windowDays int) (*Summary, error) {
	key := summaryKey(code, windowDays)

	if cached, ok := a.cache.Get(ctx, key); ok {
		var summary Summary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			summary.Cached = true

			return &summary, nil
		}

		a.logger.Warn("discarding malformed cached summary", zap.String("key", key))
	}

	link, err := a.links.GetByCode(ctx, shortener.Code(code))
	if err != nil {
		return nil, err
	}

	since := a.now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	events, err := a.store.ClicksSince(ctx, link.ID, since)
	if err != nil {
		return nil, err
	}

	summary := buildSummary(link, events)

	a.cacheJSON(ctx, key, summary)

	return summary, nil
}

// OverallStats aggregates across all active links.
func (a *Aggregator) OverallStats(ctx context.Context) (*Stats, error) {
	if cached, ok := a.cache.Get(ctx, overallStatsKey); ok {
		var stats Stats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			stats.Cached = true

			return &stats, nil
		}

		a.logger.Warn("discarding malformed cached stats", zap.String("key", overallStatsKey))
	}

	totalLinks, err := a.links.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	totalClicks, err := a.links.SumClicks(ctx)
	if err != nil {
		return nil, err
	}

	top, err := a.links.TopByClicks(ctx, topLinksLimit)
	if err != nil {
		return nil, err
	}

	recent, err := a.links.RecentlyCreated(ctx, recentLinksLimit)
	if err != nil {
		return nil, err
	}

	byDay, err := a.store.ClicksPerDaySince(ctx, a.now().Add(-overallWindow))
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalLinks:  totalLinks,
		TotalClicks: totalClicks,
		TopLinks:    linkStats(top),
		RecentLinks: linkStats(recent),
		ClicksByDay: byDay,
	}

	a.cacheJSON(ctx, overallStatsKey, stats)

	return stats, nil
}

func (a *Aggregator) cacheJSON(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}

	a.cache.Set(ctx, key, string(payload), summaryTTL)
}

func summaryKey(code string, windowDays int) string {
	return fmt.Sprintf("analytics:%s:%d", code, windowDays)
}

func buildSummary(link *shortener.ShortLink, events []*ClickEvent) *Summary {
	byDate := make(map[string]int64)
	browsers := make(map[string]int64)
	systems := make(map[string]int64)
	devices := make(map[string]int64)
	countries := make(map[string]int64)
	referrers := make(map[string]int64)

	for _, event := range events {
		byDate[event.Timestamp.UTC().Format("2006-01-02")]++

		countInto(browsers, event.Visitor.Browser)
		countInto(systems, event.Visitor.OS)
		countInto(devices, event.Visitor.Device)
		countInto(countries, event.Visitor.Country)

		if event.Referrer != "" && event.Referrer != DirectReferrer {
			referrers[event.Referrer]++
		}
	}

	return &Summary{
		Code:             string(link.Code),
		OriginalURL:      link.OriginalURL,
		CreatedAt:        link.CreatedAt,
		TotalClicks:      link.Clicks,
		ClicksInPeriod:   int64(len(events)),
		ClicksByDate:     timeSeries(byDate),
		Browsers:         breakdown(browsers),
		OperatingSystems: breakdown(systems),
		Devices:          breakdown(devices),
		Countries:        breakdown(countries),
		Referrers:        breakdown(referrers),
	}
}

func countInto(counts map[string]int64, name string) {
	if name != "" {
		counts[name]++
	}
}

func timeSeries(byDate map[string]int64) []DayCount {
	series := make([]DayCount, 0, len(byDate))

	for date, clicks := range byDate {
		series = append(series, DayCount{Date: date, Clicks: clicks})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	return series
}

func breakdown(counts map[string]int64) []BreakdownEntry {
	entries := make([]BreakdownEntry, 0, len(counts))

	for name, count := range counts {
		entries = append(entries, BreakdownEntry{Name: name, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}

		return entries[i].Name < entries[j].Name
	})

	return entries
}

func linkStats(links []*shortener.ShortLink) []LinkStat {
	stats := make([]LinkStat, 0, len(links))

	for _, link := range links {
		stats = append(stats, LinkStat{
			Code:        string(link.Code),
			OriginalURL: link.OriginalURL,
			Clicks:      link.Clicks,
			CreatedAt:   link.CreatedAt,
		})
	}

	return stats
}
