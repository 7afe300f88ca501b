package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/serroba/linkpulse/internal/cache"
	"github.com/serroba/linkpulse/internal/handlers"
	"github.com/serroba/linkpulse/internal/shortener"
	"github.com/serroba/linkpulse/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testURL     = "https://example.com/very/long/path"
	testBaseURL = "http://localhost:8888"
)

func newTestService(t *testing.T, repo shortener.Repository) *shortener.Service {
	t.Helper()

	newCode, err := shortener.NewCodeFunc()
	require.NoError(t, err)

	return shortener.NewService(repo, cache.NewMemory(), newCode, nil, zap.NewNop())
}

func newTestHandler(t *testing.T, repo shortener.Repository) *handlers.LinkHandler {
	t.Helper()

	return handlers.NewLinkHandler(newTestService(t, repo), testBaseURL, zap.NewNop())
}

func createLink(t *testing.T, handler *handlers.LinkHandler, url string) *handlers.CreateLinkResponse {
	t.Helper()

	req := &handlers.CreateLinkRequest{}
	req.Body.URL = url

	resp, err := handler.CreateLink(context.Background(), req)
	require.NoError(t, err)

	return resp
}

func TestCreateLink(t *testing.T) {
	t.Run("creates short link successfully", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		resp := createLink(t, handler, testURL)

		assert.NotEmpty(t, resp.Body.Code)
		assert.Equal(t, testURL, resp.Body.OriginalURL)
		assert.Contains(t, resp.Body.ShortURL, resp.Body.Code)
		assert.Equal(t, resp.Body.ShortURL, resp.Headers.Location)
		assert.True(t, resp.Body.IsActive)
	})

	t.Run("creates link with custom alias", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = testURL
		req.Body.CustomAlias = "my-link"

		resp, err := handler.CreateLink(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "my-link", resp.Body.Code)
	})

	t.Run("returns 409 when alias is taken", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = testURL
		req.Body.CustomAlias = "my-link"

		_, err := handler.CreateLink(context.Background(), req)
		require.NoError(t, err)

		resp, err := handler.CreateLink(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("returns 400 for invalid alias", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = testURL
		req.Body.CustomAlias = "x"

		resp, err := handler.CreateLink(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 400 for invalid url", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = "not-a-url"

		resp, err := handler.CreateLink(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 400 for out-of-range expiry", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = testURL
		req.Body.ExpiresIn = 400

		resp, err := handler.CreateLink(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("captures creator metadata from context", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		handler := newTestHandler(t, memStore)

		meta := shortener.RequestMeta{
			ClientIP:  "192.168.1.1",
			UserAgent: "TestAgent/1.0",
		}
		ctx := shortener.ContextWithRequestMeta(context.Background(), meta)

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateLink(ctx, req)
		require.NoError(t, err)

		link, err := memStore.GetByCode(context.Background(), shortener.Code(resp.Body.Code))
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.1", link.Creator.IP)
		assert.Equal(t, "TestAgent/1.0", link.Creator.UserAgent)
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects to original url", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		req := &handlers.RedirectRequest{Code: created.Body.Code}

		resp, err := handler.RedirectToURL(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
		assert.Equal(t, testURL, resp.Headers.Location)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.RedirectRequest{Code: "missing"}

		resp, err := handler.RedirectToURL(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("returns 410 for expired link", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		service := newTestService(t, memStore)
		handler := handlers.NewLinkHandler(service, testBaseURL, zap.NewNop())

		req := &handlers.CreateLinkRequest{}
		req.Body.URL = testURL
		req.Body.ExpiresIn = 1

		created, err := handler.CreateLink(context.Background(), req)
		require.NoError(t, err)

		service.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: created.Body.Code})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusGone)
	})

	t.Run("returns 404 for deleted link", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		_, err := handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: created.Body.Code})
		require.NoError(t, err)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: created.Body.Code})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestGetLink(t *testing.T) {
	t.Run("returns link details", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		resp, err := handler.GetLink(context.Background(), &handlers.GetLinkRequest{Code: created.Body.Code})

		require.NoError(t, err)
		assert.Equal(t, created.Body.Code, resp.Body.Code)
		assert.Equal(t, testURL, resp.Body.OriginalURL)
	})

	t.Run("returns deleted links too", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		_, err := handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: created.Body.Code})
		require.NoError(t, err)

		resp, err := handler.GetLink(context.Background(), &handlers.GetLinkRequest{Code: created.Body.Code})

		require.NoError(t, err)
		assert.False(t, resp.Body.IsActive)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		resp, err := handler.GetLink(context.Background(), &handlers.GetLinkRequest{Code: "missing"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestListLinks(t *testing.T) {
	t.Run("lists active links with total", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		createLink(t, handler, "https://example.com/one")
		createLink(t, handler, "https://example.com/two")
		createLink(t, handler, "https://example.com/three")

		resp, err := handler.ListLinks(context.Background(), &handlers.ListLinksRequest{})

		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Body.Total)
		assert.Len(t, resp.Body.Links, 3)
	})

	t.Run("pages results", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		createLink(t, handler, "https://example.com/one")
		createLink(t, handler, "https://example.com/two")
		createLink(t, handler, "https://example.com/three")

		resp, err := handler.ListLinks(context.Background(), &handlers.ListLinksRequest{Offset: 1, Limit: 1})

		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Body.Total)
		assert.Len(t, resp.Body.Links, 1)
	})

	t.Run("excludes deleted links", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, "https://example.com/one")
		createLink(t, handler, "https://example.com/two")

		_, err := handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: created.Body.Code})
		require.NoError(t, err)

		resp, err := handler.ListLinks(context.Background(), &handlers.ListLinksRequest{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Body.Total)
		assert.Len(t, resp.Body.Links, 1)
	})
}

func TestUpdateLink(t *testing.T) {
	t.Run("replaces tags", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		req := &handlers.UpdateLinkRequest{Code: created.Body.Code}
		req.Body.Tags = []string{"docs", "campaign"}

		resp, err := handler.UpdateLink(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, []string{"docs", "campaign"}, resp.Body.Tags)
	})

	t.Run("sets expiry", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		req := &handlers.UpdateLinkRequest{Code: created.Body.Code}
		req.Body.ExpiresIn = 30

		resp, err := handler.UpdateLink(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, resp.Body.ExpiresAt)
		assert.True(t, resp.Body.ExpiresAt.After(time.Now()))
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.UpdateLinkRequest{Code: "missing"}
		req.Body.Tags = []string{"docs"}

		resp, err := handler.UpdateLink(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestDeleteLink(t *testing.T) {
	t.Run("soft-deletes a link", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		resp, err := handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: created.Body.Code})

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		resp, err := handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: "missing"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("repeat delete succeeds", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := createLink(t, handler, testURL)

		_, err := handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: created.Body.Code})
		require.NoError(t, err)

		_, err = handler.DeleteLink(context.Background(), &handlers.DeleteLinkRequest{Code: created.Body.Code})

		require.NoError(t, err)
	})
}
