package doccache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentRequests tracks FetchDocument calls by outcome.
	DocumentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfcache_document_requests_total",
			Help: "Total document requests by outcome",
		},
		[]string{"outcome"}, // "hit", "fetched", "too_large", "network_error", "cancelled", "invalid_url"
	)

	// FetchDuration tracks end-to-end duration of cache-miss fetches,
	// including retries and backoff.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfcache_fetch_duration_seconds",
			Help:    "Document fetch duration in seconds (cache misses only)",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// CacheSizeBytes reports the total on-disk cache size, refreshed on
	// every SizeBytes call.
	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfcache_size_bytes",
			Help: "Current total size of the document cache in bytes",
		},
	)
)
