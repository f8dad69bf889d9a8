// Package doccache provides the document cache coordinator: the public
// entry point that composes the content store and the HTTP fetcher into a
// fetch-through cache for PDF documents.
//
// The coordinator serves previously fetched documents from the store
// without touching the network, fetches missing documents with bounded
// retry, enforces a per-document size ceiling, and exposes cache
// management operations (clear, size query, direct insertion).
//
// # Basic Usage
//
//	cache, err := doccache.New(doccache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	data, err := cache.FetchDocument(ctx, "https://papers.example.org/attention.pdf")
//	if err != nil {
//		var tooLarge *doccache.FileTooLargeError
//		switch {
//		case errors.As(err, &tooLarge):
//			// document exceeds the size ceiling
//		case errors.Is(err, fetcher.ErrCancelled):
//			// caller navigated away
//		default:
//			// network failure after retries - offer a retry affordance
//		}
//	}
//
// # Concurrency
//
// A Cache is safe for concurrent use. All store access is serialized
// through one mutex per instance, so concurrent callers never observe
// interleaved partial writes or race on directory creation and clearing.
// The network fetch happens outside the mutex, so requests for different
// URLs do not block each other at the network layer. Concurrent misses for
// the same URL are collapsed into a single upstream fetch via singleflight.
//
// # Error taxonomy
//
//   - ErrInvalidURL: malformed input (not absolute http/https).
//   - FileTooLargeError: payload exceeds the ceiling; never persisted.
//   - NetworkError: all retry attempts exhausted; wraps the last cause.
//   - fetcher.ErrCancelled: caller cancellation, never wrapped as a
//     NetworkError.
//
// Local store I/O failures are never surfaced as errors - they degrade to
// cache misses or no-ops, because a caching layer must never be less
// reliable than no cache at all.
package doccache
