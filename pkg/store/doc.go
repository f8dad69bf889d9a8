// Package store provides the content store backing the document cache:
// a mapping from document URLs to cached PDF payloads.
//
// Two backends implement the Store interface:
//
//   - FileStore: a single exclusively-owned directory on local disk,
//     one file per document, named by the URL's cache key.
//   - RedisStore: the same contract over Redis strings, for server-side
//     deployments of the caching proxy.
//
// # Degradation contract
//
// A caching layer must never be less reliable than no cache at all, so the
// Store API has no error returns. Every I/O failure collapses to a miss
// (Read), a no-op (Write, ClearAll) or zero (TotalSize) before it reaches
// the coordinator. Swallowed failures are still visible: they are counted
// in the pdfcache_store_errors_total metric and logged at debug/warn level.
//
// # Keys
//
// Cache keys are derived from the document URL with KeyFor. The encoding is
// base64 (URL-safe alphabet, no padding) of the URL string itself: it is
// deterministic, filename-safe, and bijective on the URL string, so two
// distinct URLs can never collide the way hashed keys theoretically can.
//
// # Basic Usage
//
//	dir, err := store.DefaultDir()
//	if err != nil {
//		return err
//	}
//	s := store.NewFileStore(dir)
//
//	key := store.KeyFor("https://papers.example.org/attention.pdf")
//	if data, ok := s.Read(key); ok {
//		// cache hit
//	}
package store
