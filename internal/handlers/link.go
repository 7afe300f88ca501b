package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkpulse/internal/shortener"
	"go.uber.org/zap"
)

const defaultListLimit = 20

// LinkHandler exposes short link creation, resolution, and lifecycle over
// HTTP.
type LinkHandler struct {
	service *shortener.Service
	baseURL string
	logger  *zap.Logger
}

// NewLinkHandler creates a link handler.
func NewLinkHandler(service *shortener.Service, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	meta := shortener.RequestMetaFromContext(ctx)

	link, err := h.service.Shorten(ctx, shortener.ShortenInput{
		OriginalURL: req.Body.URL,
		CustomAlias: req.Body.CustomAlias,
		ExpiresIn:   req.Body.ExpiresIn,
		Tags:        req.Body.Tags,
		Creator: shortener.Creator{
			IP:        meta.ClientIP,
			UserAgent: meta.UserAgent,
		},
	})
	if err != nil {
		return nil, h.mapShortenError(err)
	}

	resp := &CreateLinkResponse{}
	resp.Headers.Location = h.shortURL(link.Code)
	resp.Body = h.linkBody(link)

	return resp, nil
}

func (h *LinkHandler) mapShortenError(err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest("url must be absolute with http or https scheme")
	case errors.Is(err, shortener.ErrAliasInvalid):
		return huma.Error400BadRequest("alias must be 3-20 characters of letters, digits, hyphen, or underscore")
	case errors.Is(err, shortener.ErrExpiryInvalid):
		return huma.Error400BadRequest("expiresIn must be between 1 and 365 days")
	case errors.Is(err, shortener.ErrTooManyTags):
		return huma.Error400BadRequest("at most 10 tags are allowed")
	case errors.Is(err, shortener.ErrAliasTaken):
		return huma.Error409Conflict("alias is already in use")
	case errors.Is(err, shortener.ErrCodeExhausted):
		return huma.Error503ServiceUnavailable("could not allocate a unique code, try again")
	default:
		h.logger.Error("failed to create short link", zap.Error(err))

		return huma.Error500InternalServerError("failed to create short link")
	}
}

func (h *LinkHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	target, err := h.service.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrNotFound):
			return nil, huma.Error404NotFound("short link not found")
		case errors.Is(err, shortener.ErrExpired):
			return nil, huma.Error410Gone("short link has expired")
		default:
			h.logger.Error("failed to resolve short link",
				zap.String("code", req.Code),
				zap.Error(err),
			)

			return nil, huma.Error500InternalServerError("failed to resolve short link")
		}
	}

	resp := &RedirectResponse{
		Status: http.StatusMovedPermanently,
	}
	resp.Headers.Location = target.OriginalURL

	return resp, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *GetLinkRequest) (*GetLinkResponse, error) {
	link, err := h.service.Get(ctx, shortener.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to get short link", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get short link")
	}

	return &GetLinkResponse{Body: h.linkBody(link)}, nil
}

func (h *LinkHandler) ListLinks(ctx context.Context, req *ListLinksRequest) (*ListLinksResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	links, total, err := h.service.List(ctx, req.Offset, limit)
	if err != nil {
		h.logger.Error("failed to list short links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list short links")
	}

	resp := &ListLinksResponse{}
	resp.Body.Total = total
	resp.Body.Links = make([]ShortLinkBody, 0, len(links))

	for _, link := range links {
		resp.Body.Links = append(resp.Body.Links, h.linkBody(link))
	}

	return resp, nil
}

func (h *LinkHandler) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*UpdateLinkResponse, error) {
	link, err := h.service.Update(ctx, shortener.Code(req.Code), shortener.UpdateInput{
		Tags:      req.Body.Tags,
		ExpiresIn: req.Body.ExpiresIn,
	})
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrNotFound):
			return nil, huma.Error404NotFound("short link not found")
		case errors.Is(err, shortener.ErrExpiryInvalid):
			return nil, huma.Error400BadRequest("expiresIn must be between 1 and 365 days")
		case errors.Is(err, shortener.ErrTooManyTags):
			return nil, huma.Error400BadRequest("at most 10 tags are allowed")
		default:
			h.logger.Error("failed to update short link", zap.String("code", req.Code), zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to update short link")
		}
	}

	return &UpdateLinkResponse{Body: h.linkBody(link)}, nil
}

func (h *LinkHandler) DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*DeleteLinkResponse, error) {
	if err := h.service.Delete(ctx, shortener.Code(req.Code)); err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to delete short link", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete short link")
	}

	return &DeleteLinkResponse{Status: http.StatusNoContent}, nil
}

func (h *LinkHandler) shortURL(code shortener.Code) string {
	return fmt.Sprintf("%s/%s", h.baseURL, code)
}

func (h *LinkHandler) linkBody(link *shortener.ShortLink) ShortLinkBody {
	return ShortLinkBody{
		Code:        string(link.Code),
		ShortURL:    h.shortURL(link.Code),
		OriginalURL: link.OriginalURL,
		Clicks:      link.Clicks,
		Tags:        link.Tags,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		IsActive:    link.IsActive,
	}
}
