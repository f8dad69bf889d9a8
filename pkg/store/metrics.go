package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreErrors counts I/O failures swallowed by the store.
	// The store degrades these to miss/no-op, so the counter is the only
	// place they remain visible.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfcache_store_errors_total",
			Help: "Total number of swallowed content store I/O failures",
		},
		[]string{"backend", "operation"}, // backend: "file"|"redis", operation: "read", "write", "clear", "size", "mkdir"
	)

	// StoreWrites counts successful entry writes by backend.
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfcache_store_writes_total",
			Help: "Total number of cache entries written",
		},
		[]string{"backend"},
	)
)
