package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/linkpulse/internal/cache"
	"go.uber.org/zap"
)

const (
	minExpiryDays = 1
	maxExpiryDays = 365
	maxTags       = 10
)

var (
	// ErrExpiryInvalid is returned when expiresIn falls outside [1,365] days.
	ErrExpiryInvalid = errors.New("expiry out of range")

	// ErrTooManyTags is returned when more than ten tags are supplied.
	ErrTooManyTags = errors.New("too many tags")
)

// ShortenInput carries the parameters for creating a short link.
type ShortenInput struct {
	OriginalURL string
	CustomAlias string
	ExpiresIn   int // days; zero means no expiry
	Tags        []string
	Creator     Creator
}

// UpdateInput carries the mutable link attributes.
type UpdateInput struct {
	Tags      []string
	ExpiresIn int // days; zero leaves the expiry unchanged
}

// Service implements short-link creation, resolution, and lifecycle.
//
// Staleness policy: the resolver embeds activity state in the cache payload
// and trusts a hit within the TTL. Deletion and lazy expiry purge the cache
// entry, so the store is consulted only on a cache miss.
type Service struct {
	repo     Repository
	cache    cache.Cache
	newCode  CodeFunc
	dispatch VisitDispatch
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the short-link service. dispatch may be nil to disable
// click recording.
func NewService(
	repo Repository,
	cacheLayer cache.Cache,
	newCode CodeFunc,
	dispatch VisitDispatch,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheLayer,
		newCode:  newCode,
		dispatch: dispatch,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock swaps the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Shorten creates a short link for the given URL, with either the caller's
// alias or a generated code. Generated codes retry on collision a bounded
// number of times before failing with ErrCodeExhausted.
func (s *Service) Shorten(ctx context.Context, input ShortenInput) (*ShortLink, error) {
	if err := validateTargetURL(input.OriginalURL); err != nil {
		return nil, err
	}

	if len(input.Tags) > maxTags {
		return nil, ErrTooManyTags
	}

	expiresAt, err := s.expiryFromDays(input.ExpiresIn)
	if err != nil {
		return nil, err
	}

	link := &ShortLink{
		ID:          uuid.NewString(),
		OriginalURL: input.OriginalURL,
		CustomAlias: input.CustomAlias,
		Tags:        input.Tags,
		Creator:     input.Creator,
		CreatedAt:   s.now(),
		ExpiresAt:   expiresAt,
		IsActive:    true,
	}

	if input.CustomAlias != "" {
		if err := s.createWithAlias(ctx, link, input.CustomAlias); err != nil {
			return nil, err
		}
	} else {
		if err := s.createWithGeneratedCode(ctx, link); err != nil {
			return nil, err
		}
	}

	// Write-through: a fresh link is immediately resolvable from cache.
	s.cacheLink(ctx, link)

	return link, nil
}

func (s *Service) createWithAlias(ctx context.Context, link *ShortLink, alias string) error {
	if err := ValidateAlias(alias); err != nil {
		return err
	}

	link.Code = Code(alias)

	if err := s.repo.Create(ctx, link); err != nil {
		if errors.Is(err, ErrCodeTaken) {
			return ErrAliasTaken
		}

		return fmt.Errorf("create short link: %w", err)
	}

	return nil
}

func (s *Service) createWithGeneratedCode(ctx context.Context, link *ShortLink) error {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		link.Code = Code(s.newCode())

		err := s.repo.Create(ctx, link)
		if err == nil {
			return nil
		}

		if !errors.Is(err, ErrCodeTaken) {
			return fmt.Errorf("create short link: %w", err)
		}

		s.logger.Debug("short code collision, regenerating",
			zap.String("code", string(link.Code)),
			zap.Int("attempt", attempt+1),
		)
	}

	return ErrCodeExhausted
}

// Resolve returns the target URL for an active, non-expired code and hands
// the visit to the click recorder out of band. The recorder never blocks or
// fails the resolution.
func (s *Service) Resolve(ctx context.Context, code Code) (*ResolvedTarget, error) {
	if entry, ok := s.cachedEntry(ctx, code); ok {
		return s.resolveFromCache(ctx, code, entry)
	}

	link, err := s.repo.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("resolve %q: %w", code, err)
	}

	if link.Expired(s.now()) {
		s.lazyExpire(ctx, code)

		return nil, ErrExpired
	}

	s.cacheLink(ctx, link)

	target := &ResolvedTarget{Code: code, OriginalURL: link.OriginalURL}
	s.recordVisit(ctx, link.ID, code)

	return target, nil
}

func (s *Service) resolveFromCache(ctx context.Context, code Code, entry *CacheEntry) (*ResolvedTarget, error) {
	if !entry.IsActive {
		return nil, ErrNotFound
	}

	if entry.Expired(s.now()) {
		s.lazyExpire(ctx, code)

		return nil, ErrExpired
	}

	target := &ResolvedTarget{Code: code, OriginalURL: entry.OriginalURL, FromCache: true}
	s.recordVisit(ctx, entry.LinkID, code)

	return target, nil
}

// Delete soft-deletes a link and purges its cache entry, so a stale cached
// copy cannot outlive the deletion.
func (s *Service) Delete(ctx context.Context, code Code) error {
	if err := s.repo.Deactivate(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete %q: %w", code, err)
	}

	s.cache.Delete(ctx, LinkCacheKey(code))

	return nil
}

// Update replaces a link's tags and/or expiry and purges the cache entry.
func (s *Service) Update(ctx context.Context, code Code, input UpdateInput) (*ShortLink, error) {
	if len(input.Tags) > maxTags {
		return nil, ErrTooManyTags
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.Tags != nil {
		link.Tags = input.Tags
	}

	if input.ExpiresIn != 0 {
		expiresAt, err := s.expiryFromDays(input.ExpiresIn)
		if err != nil {
			return nil, err
		}

		link.ExpiresAt = expiresAt
	}

	if err := s.repo.UpdateMeta(ctx, code, link.Tags, link.ExpiresAt); err != nil {
		return nil, fmt.Errorf("update %q: %w", code, err)
	}

	s.cache.Delete(ctx, LinkCacheKey(code))

	return link, nil
}

// Get returns a link regardless of its active state.
func (s *Service) Get(ctx context.Context, code Code) (*ShortLink, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns active links newest first, with the total active count.
func (s *Service) List(ctx context.Context, offset, limit int) ([]*ShortLink, int64, error) {
	return s.repo.ListActive(ctx, offset, limit)
}

func (s *Service) cachedEntry(ctx context.Context, code Code) (*CacheEntry, bool) {
	payload, ok := s.cache.Get(ctx, LinkCacheKey(code))
	if !ok {
		return nil, false
	}

	entry, err := decodeCacheEntry(payload)
	if err != nil {
		s.logger.Warn("discarding malformed cache entry", zap.String("code", string(code)))
		s.cache.Delete(ctx, LinkCacheKey(code))

		return nil, false
	}

	return entry, true
}

func (s *Service) cacheLink(ctx context.Context, link *ShortLink) {
	payload, err := newCacheEntry(link).encode()
	if err != nil {
		return
	}

	s.cache.Set(ctx, LinkCacheKey(link.Code), payload, linkCacheTTL)
}

// lazyExpire deactivates an expired link on access and purges its cache
// entry. Subsequent resolves observe ErrNotFound.
func (s *Service) lazyExpire(ctx context.Context, code Code) {
	if err := s.repo.Deactivate(ctx, code); err != nil {
		s.logger.Error("lazy expiry failed", zap.String("code", string(code)), zap.Error(err))
	}

	s.cache.Delete(ctx, LinkCacheKey(code))
}

func (s *Service) recordVisit(ctx context.Context, linkID string, code Code) {
	if s.dispatch == nil {
		return
	}

	meta := RequestMetaFromContext(ctx)

	s.dispatch(Visit{
		LinkID:    linkID,
		Code:      string(code),
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
		At:        s.now(),
	})
}

func (s *Service) expiryFromDays(days int) (*time.Time, error) {
	if days == 0 {
		return nil, nil
	}

	if days < minExpiryDays || days > maxExpiryDays {
		return nil, ErrExpiryInvalid
	}

	expiresAt := s.now().Add(time.Duration(days) * 24 * time.Hour)

	return &expiresAt, nil
}

func validateTargetURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
