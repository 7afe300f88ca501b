package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linkpulse/internal/shortener"
)

// PostgresStore is the PostgreSQL implementation of shortener.Repository and
// analytics.Store. Uniqueness and atomic increments rely on the database, not
// on application-level locking.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const linkColumns = `id, code, custom_alias, original_url, clicks, tags,
	creator_ip, creator_user_agent, created_at, expires_at, is_active`

func (p *PostgresStore) Create(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links
			(id, code, custom_alias, original_url, clicks, tags,
			 creator_ip, creator_user_agent, created_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		link.ID,
		string(link.Code),
		nullableString(link.CustomAlias),
		link.OriginalURL,
		link.Clicks,
		link.Tags,
		link.Creator.IP,
		link.Creator.UserAgent,
		link.CreatedAt,
		link.ExpiresAt,
		link.IsActive,
	)
	if err != nil {
		return err
	}

	// A silent conflict means the code or alias is already owned.
	if tag.RowsAffected() == 0 {
		return shortener.ErrCodeTaken
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM short_links WHERE code = $1`, linkColumns)

	return p.scanLink(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresStore) GetActiveByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM short_links WHERE code = $1 AND is_active`, linkColumns)

	return p.scanLink(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresStore) Deactivate(ctx context.Context, code shortener.Code) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE short_links SET is_active = FALSE WHERE code = $1`,
		string(code),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) IncrementClicks(ctx context.Context, code shortener.Code) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE short_links SET clicks = clicks + 1 WHERE code = $1`,
		string(code),
	)

	return err
}

func (p *PostgresStore) UpdateMeta(ctx context.Context, code shortener.Code, tags []string, expiresAt *time.Time) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE short_links SET tags = $2, expires_at = $3 WHERE code = $1`,
		string(code), tags, expiresAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) ListActive(ctx context.Context, offset, limit int) ([]*shortener.ShortLink, int64, error) {
	var total int64
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM short_links WHERE is_active`,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM short_links
		WHERE is_active
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, linkColumns)

	links, err := p.queryLinks(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	return links, total, nil
}

func (p *PostgresStore) CountActive(ctx context.Context) (int64, error) {
	var count int64

	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM short_links WHERE is_active`).Scan(&count)

	return count, err
}

func (p *PostgresStore) SumClicks(ctx context.Context) (int64, error) {
	var sum int64

	err := p.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(clicks), 0) FROM short_links WHERE is_active`,
	).Scan(&sum)

	return sum, err
}

func (p *PostgresStore) TopByClicks(ctx context.Context, n int) ([]*shortener.ShortLink, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM short_links
		WHERE is_active
		ORDER BY clicks DESC, created_at DESC
		LIMIT $1
	`, linkColumns)

	return p.queryLinks(ctx, query, n)
}

func (p *PostgresStore) RecentlyCreated(ctx context.Context, n int) ([]*shortener.ShortLink, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM short_links
		WHERE is_active
		ORDER BY created_at DESC
		LIMIT $1
	`, linkColumns)

	return p.queryLinks(ctx, query, n)
}

func (p *PostgresStore) queryLinks(ctx context.Context, query string, args ...any) ([]*shortener.ShortLink, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*shortener.ShortLink

	for rows.Next() {
		link, err := p.scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (p *PostgresStore) scanLink(row pgx.Row) (*shortener.ShortLink, error) {
	var (
		link  shortener.ShortLink
		alias *string
	)

	err := row.Scan(
		&link.ID,
		&link.Code,
		&alias,
		&link.OriginalURL,
		&link.Clicks,
		&link.Tags,
		&link.Creator.IP,
		&link.Creator.UserAgent,
		&link.CreatedAt,
		&link.ExpiresAt,
		&link.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if alias != nil {
		link.CustomAlias = *alias
	}

	return &link, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
