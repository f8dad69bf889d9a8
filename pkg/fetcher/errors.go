package fetcher

import "errors"

// Common errors returned by the fetcher.
var (
	// ErrRetryExhausted is returned when all fetch attempts failed. It
	// wraps the last underlying failure.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrCancelled is returned when the calling context is cancelled
	// before or between attempts. It is distinct from a network failure so
	// callers can tell "user navigated away" from "fetch genuinely failed".
	ErrCancelled = errors.New("fetch cancelled")
)
