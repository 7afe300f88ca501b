package store

import (
	"context"
	"time"

	"github.com/serroba/linkpulse/internal/analytics"
)

func (p *PostgresStore) SaveClick(ctx context.Context, event *analytics.ClickEvent) error {
	query := `
		INSERT INTO click_events
			(id, link_id, code, ts, visitor_ip, visitor_user_agent,
			 browser, os, device, country, city, referrer, is_bot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := p.pool.Exec(ctx, query,
		event.ID,
		event.LinkID,
		event.Code,
		event.Timestamp,
		event.Visitor.IP,
		event.Visitor.UserAgent,
		event.Visitor.Browser,
		event.Visitor.OS,
		event.Visitor.Device,
		event.Visitor.Country,
		event.Visitor.City,
		event.Referrer,
		event.IsBot,
	)

	return err
}

func (p *PostgresStore) ClicksSince(ctx context.Context, linkID string, since time.Time) ([]*analytics.ClickEvent, error) {
	query := `
		SELECT id, link_id, code, ts, visitor_ip, visitor_user_agent,
			browser, os, device, country, city, referrer, is_bot
		FROM click_events
		WHERE link_id = $1 AND ts >= $2
		ORDER BY ts
	`

	rows, err := p.pool.Query(ctx, query, linkID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*analytics.ClickEvent

	for rows.Next() {
		var event analytics.ClickEvent

		err := rows.Scan(
			&event.ID,
			&event.LinkID,
			&event.Code,
			&event.Timestamp,
			&event.Visitor.IP,
			&event.Visitor.UserAgent,
			&event.Visitor.Browser,
			&event.Visitor.OS,
			&event.Visitor.Device,
			&event.Visitor.Country,
			&event.Visitor.City,
			&event.Referrer,
			&event.IsBot,
		)
		if err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}

func (p *PostgresStore) ClicksPerDaySince(ctx context.Context, since time.Time) ([]analytics.DayCount, error) {
	query := `
		SELECT to_char(ts AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM click_events
		WHERE ts >= $1
		GROUP BY day
		ORDER BY day
	`

	rows, err := p.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []analytics.DayCount

	for rows.Next() {
		var day analytics.DayCount

		if err := rows.Scan(&day.Date, &day.Clicks); err != nil {
			return nil, err
		}

		series = append(series, day)
	}

	return series, rows.Err()
}

func (p *PostgresStore) PurgeClicksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM click_events WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Compile-time check.
var _ analytics.Store = (*PostgresStore)(nil)
