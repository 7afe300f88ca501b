package shortener_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/linkpulse/internal/cache"
	"github.com/serroba/linkpulse/internal/shortener"
	"github.com/serroba/linkpulse/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "https://example.com/very/long/path"

type fixture struct {
	service *shortener.Service
	repo    *store.MemoryStore
	cache   *cache.Memory
	visits  []shortener.Visit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	newCode, err := shortener.NewCodeFunc()
	require.NoError(t, err)

	f := &fixture{
		repo:  store.NewMemoryStore(),
		cache: cache.NewMemory(),
	}
	f.service = shortener.NewService(f.repo, f.cache, newCode, func(v shortener.Visit) {
		f.visits = append(f.visits, v)
	}, zap.NewNop())

	return f
}

func (f *fixture) shorten(t *testing.T, input shortener.ShortenInput) *shortener.ShortLink {
	t.Helper()

	link, err := f.service.Shorten(context.Background(), input)
	require.NoError(t, err)

	return link
}

func TestShorten(t *testing.T) {
	t.Run("creates link with generated code", func(t *testing.T) {
		f := newFixture(t)

		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		assert.Len(t, string(link.Code), shortener.GeneratedCodeLength)
		assert.Equal(t, testURL, link.OriginalURL)
		assert.True(t, link.IsActive)
		assert.Nil(t, link.ExpiresAt)
		assert.NotEmpty(t, link.ID)
	})

	t.Run("creates link with custom alias", func(t *testing.T) {
		f := newFixture(t)

		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, CustomAlias: "demo"})

		assert.Equal(t, shortener.Code("demo"), link.Code)
		assert.Equal(t, "demo", link.CustomAlias)
	})

	t.Run("rejects taken alias", func(t *testing.T) {
		f := newFixture(t)
		f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, CustomAlias: "demo"})

		_, err := f.service.Shorten(context.Background(), shortener.ShortenInput{
			OriginalURL: "https://example.com/other",
			CustomAlias: "demo",
		})

		assert.ErrorIs(t, err, shortener.ErrAliasTaken)
	})

	t.Run("rejects invalid alias", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Shorten(context.Background(), shortener.ShortenInput{
			OriginalURL: testURL,
			CustomAlias: "x!",
		})

		assert.ErrorIs(t, err, shortener.ErrAliasInvalid)
	})

	t.Run("rejects invalid urls", func(t *testing.T) {
		f := newFixture(t)

		for _, raw := range []string{"", "not-a-url", "ftp://example.com/file", "http://"} {
			_, err := f.service.Shorten(context.Background(), shortener.ShortenInput{OriginalURL: raw})

			assert.ErrorIs(t, err, shortener.ErrInvalidURL, raw)
		}
	})

	t.Run("rejects out-of-range expiry", func(t *testing.T) {
		f := newFixture(t)

		for _, days := range []int{-1, 366} {
			_, err := f.service.Shorten(context.Background(), shortener.ShortenInput{
				OriginalURL: testURL,
				ExpiresIn:   days,
			})

			assert.ErrorIs(t, err, shortener.ErrExpiryInvalid)
		}
	})

	t.Run("rejects more than ten tags", func(t *testing.T) {
		f := newFixture(t)

		tags := make([]string, 11)
		for i := range tags {
			tags[i] = "tag"
		}

		_, err := f.service.Shorten(context.Background(), shortener.ShortenInput{
			OriginalURL: testURL,
			Tags:        tags,
		})

		assert.ErrorIs(t, err, shortener.ErrTooManyTags)
	})

	t.Run("sets expiry from days", func(t *testing.T) {
		f := newFixture(t)

		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, ExpiresIn: 30})

		require.NotNil(t, link.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *link.ExpiresAt, time.Minute)
	})

	t.Run("exhausts bounded retries on persistent collision", func(t *testing.T) {
		repo := store.NewMemoryStore()
		memCache := cache.NewMemory()

		// Pre-claim the only code the generator will ever produce.
		service := shortener.NewService(repo, memCache, func() string { return "collide" }, nil, zap.NewNop())

		_, err := service.Shorten(context.Background(), shortener.ShortenInput{OriginalURL: testURL})
		require.NoError(t, err)

		_, err = service.Shorten(context.Background(), shortener.ShortenInput{OriginalURL: testURL})

		assert.ErrorIs(t, err, shortener.ErrCodeExhausted)
	})

	t.Run("caches a fresh link write-through", func(t *testing.T) {
		f := newFixture(t)

		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		_, ok := f.cache.Get(context.Background(), shortener.LinkCacheKey(link.Code))
		assert.True(t, ok)
	})
}

func TestResolve(t *testing.T) {
	t.Run("resolves from cache after creation", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		target, err := f.service.Resolve(context.Background(), link.Code)

		require.NoError(t, err)
		assert.Equal(t, testURL, target.OriginalURL)
		assert.True(t, target.FromCache)
	})

	t.Run("falls back to store on cache miss", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		f.cache.Delete(context.Background(), shortener.LinkCacheKey(link.Code))

		target, err := f.service.Resolve(context.Background(), link.Code)

		require.NoError(t, err)
		assert.False(t, target.FromCache)

		// The miss repopulated the cache.
		target, err = f.service.Resolve(context.Background(), link.Code)
		require.NoError(t, err)
		assert.True(t, target.FromCache)
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Resolve(context.Background(), "missing")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("expired link returns expired once then not found", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, ExpiresIn: 1})

		f.service.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

		_, err := f.service.Resolve(context.Background(), link.Code)
		assert.ErrorIs(t, err, shortener.ErrExpired)

		_, err = f.service.Resolve(context.Background(), link.Code)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("lazy expiry deactivates the stored link", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, ExpiresIn: 1})

		f.service.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

		_, err := f.service.Resolve(context.Background(), link.Code)
		require.ErrorIs(t, err, shortener.ErrExpired)

		stored, err := f.repo.GetByCode(context.Background(), link.Code)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
	})

	t.Run("deleted link is not resolvable even with warm cache", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		// Warm cache from a resolve, then delete.
		_, err := f.service.Resolve(context.Background(), link.Code)
		require.NoError(t, err)

		require.NoError(t, f.service.Delete(context.Background(), link.Code))

		_, err = f.service.Resolve(context.Background(), link.Code)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("resolve dispatches a visit with request metadata", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		ctx := shortener.ContextWithRequestMeta(context.Background(), shortener.RequestMeta{
			ClientIP:  "203.0.113.7",
			UserAgent: "TestAgent/1.0",
			Referrer:  "https://referrer.com",
		})

		_, err := f.service.Resolve(ctx, link.Code)
		require.NoError(t, err)

		require.Len(t, f.visits, 1)
		visit := f.visits[0]
		assert.Equal(t, link.ID, visit.LinkID)
		assert.Equal(t, string(link.Code), visit.Code)
		assert.Equal(t, "203.0.113.7", visit.IP)
		assert.Equal(t, "TestAgent/1.0", visit.UserAgent)
		assert.Equal(t, "https://referrer.com", visit.Referrer)
		assert.False(t, visit.At.IsZero())
	})

	t.Run("failed resolves dispatch nothing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Resolve(context.Background(), "missing")
		require.ErrorIs(t, err, shortener.ErrNotFound)

		assert.Empty(t, f.visits)
	})

	t.Run("nil dispatch disables click recording", func(t *testing.T) {
		repo := store.NewMemoryStore()
		newCode, err := shortener.NewCodeFunc()
		require.NoError(t, err)

		service := shortener.NewService(repo, cache.NewMemory(), newCode, nil, zap.NewNop())

		link, err := service.Shorten(context.Background(), shortener.ShortenInput{OriginalURL: testURL})
		require.NoError(t, err)

		_, err = service.Resolve(context.Background(), link.Code)
		require.NoError(t, err)
	})
}

func TestDelete(t *testing.T) {
	t.Run("soft-deletes and purges cache", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL})

		require.NoError(t, f.service.Delete(context.Background(), link.Code))

		_, ok := f.cache.Get(context.Background(), shortener.LinkCacheKey(link.Code))
		assert.False(t, ok)

		stored, err := f.repo.GetByCode(context.Background(), link.Code)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.Delete(context.Background(), "missing")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("replaces tags and purges cache", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, Tags: []string{"old"}})

		updated, err := f.service.Update(context.Background(), link.Code, shortener.UpdateInput{
			Tags: []string{"docs", "campaign"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"docs", "campaign"}, updated.Tags)

		_, ok := f.cache.Get(context.Background(), shortener.LinkCacheKey(link.Code))
		assert.False(t, ok)
	})

	t.Run("extends expiry", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, ExpiresIn: 1})

		updated, err := f.service.Update(context.Background(), link.Code, shortener.UpdateInput{ExpiresIn: 60})

		require.NoError(t, err)
		require.NotNil(t, updated.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), *updated.ExpiresAt, time.Minute)
	})

	t.Run("keeps tags when only expiry changes", func(t *testing.T) {
		f := newFixture(t)
		link := f.shorten(t, shortener.ShortenInput{OriginalURL: testURL, Tags: []string{"keep"}})

		updated, err := f.service.Update(context.Background(), link.Code, shortener.UpdateInput{ExpiresIn: 30})

		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, updated.Tags)
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Update(context.Background(), "missing", shortener.UpdateInput{Tags: []string{"x"}})

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	t.Run("lists newest first with total", func(t *testing.T) {
		f := newFixture(t)
		f.shorten(t, shortener.ShortenInput{OriginalURL: "https://example.com/one"})
		f.shorten(t, shortener.ShortenInput{OriginalURL: "https://example.com/two"})

		links, total, err := f.service.List(context.Background(), 0, 10)

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, links, 2)
	})
}
