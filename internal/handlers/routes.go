package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkpulse/internal/ratelimit"
)

// RegisterRoutes registers all link and analytics routes with per-endpoint
// rate limit configuration.
func RegisterRoutes(api huma.API, links *LinkHandler, stats *AnalyticsHandler) {
	// Write operations carry stricter limits than the policy defaults.
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short link",
		Description: "Creates a short link with a generated code or a custom alias.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, links.CreateLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List short links",
		Description: "Lists active short links, newest first.",
		Tags:        []string{"Links"},
	}, links.ListLinks)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/links/{code}",
		Summary:     "Get short link",
		Description: "Returns a short link's details regardless of its active state.",
		Tags:        []string{"Links"},
	}, links.GetLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPatch,
		Path:        "/links/{code}",
		Summary:     "Update short link",
		Description: "Replaces a short link's tags and/or expiry.",
		Tags:        []string{"Links"},
	}, links.UpdateLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodDelete,
		Path:        "/links/{code}",
		Summary:     "Delete short link",
		Description: "Soft-deletes a short link. The code is not reusable.",
		Tags:        []string{"Links"},
	}, links.DeleteLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/links/{code}/analytics",
		Summary:     "Link analytics",
		Description: "Aggregated click summary for one link over a window of days.",
		Tags:        []string{"Analytics"},
	}, stats.LinkAnalytics)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Overall statistics",
		Description: "Service-wide link and click statistics.",
		Tags:        []string{"Analytics"},
	}, stats.OverallStats)

	// The redirect path absorbs link traffic; limits are relaxed accordingly.
	// Registered last so fixed paths take precedence.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Resolves the short code and redirects to the original URL.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, links.RedirectToURL)
}
