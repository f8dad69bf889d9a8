// Package metrics provides the centralized Prometheus metrics registry for
// the document cache. All metrics are defined in their respective packages
// (doccache, fetcher, store) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the document cache.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Coordinator Metrics (pkg/doccache):
//   - pdfcache_document_requests_total{outcome} (Counter): Document requests
//     by outcome (hit, fetched, too_large, network_error, cancelled, invalid_url)
//   - pdfcache_fetch_duration_seconds (Histogram): End-to-end miss duration
//     including retries and backoff
//   - pdfcache_size_bytes (Gauge): Total cache size, refreshed on size queries
//
// Fetcher Metrics (pkg/fetcher):
//   - pdfcache_fetch_attempts_total{result} (Counter): Individual HTTP attempts
//   - pdfcache_fetch_retry_backoff_seconds (Histogram): Backoff waits between attempts
//   - pdfcache_fetch_exhausted_total (Counter): Fetches that used all attempts
//
// Store Metrics (pkg/store):
//   - pdfcache_store_errors_total{backend, operation} (Counter): Swallowed I/O failures
//   - pdfcache_store_writes_total{backend} (Counter): Entries written
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pdfcache_document_requests_total{outcome="hit"}[5m])) /
//   sum(rate(pdfcache_document_requests_total{outcome=~"hit|fetched"}[5m]))
//
//   # Fetch Failure Rate
//   rate(pdfcache_document_requests_total{outcome="network_error"}[5m])
//
//   # P95 Miss Latency
//   histogram_quantile(0.95, rate(pdfcache_fetch_duration_seconds_bucket[5m]))
//
//   # Swallowed Store Errors (should stay near zero)
//   rate(pdfcache_store_errors_total[5m])
