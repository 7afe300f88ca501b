package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkpulse/internal/analytics"
	"github.com/serroba/linkpulse/internal/shortener"
	"go.uber.org/zap"
)

const defaultSummaryDays = 7

// AnalyticsHandler exposes per-link summaries and overall statistics.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	logger     *zap.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(aggregator *analytics.Aggregator, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// LinkAnalyticsResponse carries one link's click summary.
type LinkAnalyticsResponse struct {
	Body analytics.Summary
}

// OverallStatsResponse carries service-wide statistics.
type OverallStatsResponse struct {
	Body analytics.Stats
}

func (h *AnalyticsHandler) LinkAnalytics(
	ctx context.Context,
	req *LinkAnalyticsRequest,
) (*LinkAnalyticsResponse, error) {
	days := req.Days
	if days == 0 {
		days = defaultSummaryDays
	}

	summary, err := h.aggregator.Summarize(ctx, req.Code, days)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to summarize link clicks",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to summarize link clicks")
	}

	return &LinkAnalyticsResponse{Body: *summary}, nil
}

func (h *AnalyticsHandler) OverallStats(
	ctx context.Context,
	_ *OverallStatsRequest,
) (*OverallStatsResponse, error) {
	stats, err := h.aggregator.OverallStats(ctx)
	if err != nil {
		h.logger.Error("failed to compute overall stats", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to compute overall stats")
	}

	return &OverallStatsResponse{Body: *stats}, nil
}
