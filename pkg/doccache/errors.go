package doccache

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
// Well-formed callers construct URLs from backend metadata, so this is a
// guard rather than an expected runtime condition.
var ErrInvalidURL = errors.New("invalid document URL")

// FileTooLargeError is returned when a fetched payload exceeds the size
// ceiling. The payload is discarded, never persisted and never returned.
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

// Error implements the error interface.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("PDF file too large: %dMB exceeds %dMB limit", e.Size>>20, e.Limit>>20)
}

// NetworkError is returned when every fetch attempt failed. It wraps the
// fetcher's exhaustion error, which in turn wraps the last transport-level
// failure.
type NetworkError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
