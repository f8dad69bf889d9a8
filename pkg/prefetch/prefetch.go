// Package prefetch warms the document cache from a list of URLs using a
// bounded worker pool, so a reading list can be made available offline
// ahead of time.
package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds prefetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel document fetches.
	MaxConcurrency int
	// Timeout bounds each document fetch, including its retries.
	Timeout time.Duration
}

// DefaultConfig returns safe defaults for mobile-grade backends.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        60 * time.Second,
	}
}

// DocumentFetcher is the subset of the cache coordinator the prefetcher
// needs.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

// Result summarizes a prefetch run. A run is best-effort: individual
// failures are recorded, not fatal.
type Result struct {
	Fetched int
	Failed  int
	Errors  map[string]error
}

// Prefetcher fetches batches of documents through the cache coordinator.
type Prefetcher struct {
	cache  DocumentFetcher
	config Config
}

// New creates a prefetcher. Zero config fields fall back to defaults.
func New(cache DocumentFetcher, config Config) *Prefetcher {
	def := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = def.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}

	return &Prefetcher{
		cache:  cache,
		config: config,
	}
}

// WarmAll fetches every URL through the cache, bounded by MaxConcurrency.
// Documents already cached complete without network traffic. Returns a
// Result describing the run; the error is non-nil only when the context
// was cancelled before the run finished.
func (p *Prefetcher) WarmAll(ctx context.Context, urls []string) (*Result, error) {
	start := time.Now()

	log.Info().
		Int("documents", len(urls)).
		Int("workers", p.config.MaxConcurrency).
		Msg("Starting cache prefetch")

	queue := make(chan string, len(urls))
	for _, url := range urls {
		queue <- url
	}
	close(queue)

	result := &Result{Errors: make(map[string]error)}
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < p.config.MaxConcurrency; i++ {
		wg.Add(1)
		go p.worker(ctx, queue, result, &mu, &wg, i)
	}
	wg.Wait()

	log.Info().
		Int("fetched", result.Fetched).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Prefetch complete")

	return result, ctx.Err()
}

// worker drains the URL queue until it is empty or the context ends.
func (p *Prefetcher) worker(ctx context.Context, queue <-chan string, result *Result, mu *sync.Mutex, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for url := range queue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Msg("Prefetch worker stopping (context cancelled)")
			return
		default:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		_, err := p.cache.FetchDocument(fetchCtx, url)
		cancel()

		mu.Lock()
		if err != nil {
			result.Failed++
			result.Errors[url] = err
			mu.Unlock()
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("url", url).
				Msg("Prefetch of document failed")
			continue
		}
		result.Fetched++
		mu.Unlock()
	}
}
