package store

import "errors"

var (
	// ErrValidation marks a locally recoverable input error (empty required
	// field). Surfaced as an inline message, never retried.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a stale id reference.
	ErrNotFound = errors.New("prompt not found")
	// ErrUnavailable marks a backend or snapshot failure. Load falls back to
	// the cache path; mutations stay optimistic.
	ErrUnavailable = errors.New("prompt service unavailable")
)
