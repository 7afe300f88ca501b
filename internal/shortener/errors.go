package shortener

import "errors"

var (
	// ErrNotFound is returned when no active link exists for a code.
	ErrNotFound = errors.New("short link not found")

	// ErrExpired is returned the first time an expired link is resolved.
	ErrExpired = errors.New("short link expired")

	// ErrAliasInvalid is returned for a custom alias that violates the
	// charset or length bounds.
	ErrAliasInvalid = errors.New("custom alias invalid")

	// ErrAliasTaken is returned when a custom alias is already owned by
	// another link, active or not.
	ErrAliasTaken = errors.New("custom alias already taken")

	// ErrCodeTaken is returned by the store on a short-code uniqueness
	// violation. Generated codes retry on it; custom aliases surface it
	// as ErrAliasTaken.
	ErrCodeTaken = errors.New("short code already taken")

	// ErrCodeExhausted is returned when code generation keeps colliding
	// after the bounded number of retries.
	ErrCodeExhausted = errors.New("short code generation exhausted")

	// ErrInvalidURL is returned when the target URL is not an absolute
	// http or https URL.
	ErrInvalidURL = errors.New("invalid url")
)
