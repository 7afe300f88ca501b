package shortener

import "time"

// Code represents a short link code.
type Code string

// Creator holds the request context captured when a link was created.
type Creator struct {
	IP        string
	UserAgent string
}

// ShortLink maps a short code to a target URL.
type ShortLink struct {
	ID          string
	Code        Code
	OriginalURL string
	CustomAlias string // empty when the code was generated
	Clicks      int64
	Tags        []string
	Creator     Creator
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	IsActive    bool
}

// Expired reports whether the link's expiry, if set, has passed.
func (l *ShortLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Resolvable reports whether the link may serve redirects at the given time.
// A link is resolvable iff it is active and not expired.
func (l *ShortLink) Resolvable(now time.Time) bool {
	return l.IsActive && !l.Expired(now)
}

// ResolvedTarget is the outcome of a successful resolution.
type ResolvedTarget struct {
	Code        Code
	OriginalURL string
	FromCache   bool
}

// Visit is the raw, unenriched record of a single redirect, handed off the
// redirect path for asynchronous analytics recording.
type Visit struct {
	LinkID    string    `json:"linkId"`
	Code      string    `json:"code"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
	At        time.Time `json:"at"`
}

// VisitDispatch hands a visit to the click-recording pipeline. Implementations
// must not block and must never fail the caller.
type VisitDispatch func(visit Visit)
