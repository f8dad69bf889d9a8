// Package fetcher retrieves whole PDF documents over HTTP with bounded
// retry and linearly increasing backoff.
//
// The retry policy is deliberately simple: every non-cancellation failure
// is retried up to MaxAttempts times, waiting BackoffBase multiplied by the
// 1-based attempt number between attempts (500ms, 1000ms, ...). There is no
// jitter and no per-error-class policy; a document fetch either works within
// a few attempts or the caller shows a retry affordance.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch operations.
var (
	fetchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdfcache_fetch_attempts_total",
		Help: "Total fetch attempts by result",
	}, []string{"result"}) // "ok", "error"

	fetchRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdfcache_fetch_retry_backoff_seconds",
		Help:    "Backoff duration between fetch attempts",
		Buckets: []float64{0.5, 1, 1.5, 2, 3, 5},
	})

	fetchExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfcache_fetch_exhausted_total",
		Help: "Total number of fetches that exhausted all attempts",
	})
)

// Fetcher retrieves a document's bytes by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config holds the fetcher configuration.
type Config struct {
	// MaxAttempts is the maximum number of fetch attempts (including the
	// initial request).
	MaxAttempts int

	// BackoffBase is multiplied by the 1-based attempt number to produce
	// the wait before the next attempt.
	BackoffBase time.Duration

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BackoffBase: 500 * time.Millisecond,
		Timeout:     30 * time.Second,
		UserAgent:   "pdfcache/0.1.0",
	}
}

// HTTPFetcher fetches documents with plain GET requests. Each attempt
// retrieves the entire document in one shot; there is no byte-range
// resumption across attempts.
type HTTPFetcher struct {
	client *resty.Client
	config Config
	logger zerolog.Logger
}

// New creates an HTTP fetcher. Zero config fields fall back to defaults.
func New(cfg Config) *HTTPFetcher {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	// The retry loop lives here, not in resty.
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/pdf")

	return &HTTPFetcher{
		client: client,
		config: cfg,
		logger: log.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch retrieves the document at url, retrying failed attempts with
// linear backoff. Cancellation aborts immediately with ErrCancelled; when
// all attempts fail the returned error wraps ErrRetryExhausted and the
// last underlying failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		data, err := f.attempt(ctx, url)
		if err == nil {
			fetchAttemptsTotal.WithLabelValues("ok").Inc()
			if attempt > 1 {
				f.logger.Info().
					Str("url", url).
					Int("attempt", attempt).
					Msg("Fetch succeeded after retry")
			}
			return data, nil
		}

		// A cancelled caller context surfaces through the transport;
		// report it as cancellation, not as a failed attempt.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		fetchAttemptsTotal.WithLabelValues("error").Inc()
		lastErr = err

		if attempt >= f.config.MaxAttempts {
			break
		}

		backoff := f.config.BackoffBase * time.Duration(attempt)
		fetchRetryBackoffSeconds.Observe(backoff.Seconds())

		f.logger.Debug().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retrying fetch after backoff")

		select {
		case <-ctx.Done():
			f.logger.Debug().
				Str("url", url).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-time.After(backoff):
		}
	}

	fetchExhaustedTotal.Inc()
	f.logger.Warn().
		Err(lastErr).
		Str("url", url).
		Int("max_attempts", f.config.MaxAttempts).
		Msg("Fetch attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, f.config.MaxAttempts, lastErr)
}

// attempt performs a single GET. Any non-2xx status counts as a failed
// attempt.
func (f *HTTPFetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.Status())
	}
	return resp.Body(), nil
}
