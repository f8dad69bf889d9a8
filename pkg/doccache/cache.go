package doccache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/papervault/pdfcache/pkg/fetcher"
	"github.com/papervault/pdfcache/pkg/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxDocumentBytes is the default per-document size ceiling (50 MiB).
const DefaultMaxDocumentBytes = 50 << 20

// Config holds the cache coordinator configuration.
type Config struct {
	// Store is the content store backend. When nil, a FileStore rooted at
	// CacheDir (or the platform default directory) is used.
	Store store.Store

	// CacheDir is the FileStore directory when Store is nil. Empty means
	// store.DefaultDir().
	CacheDir string

	// Fetcher retrieves documents on cache misses. When nil, an HTTP
	// fetcher with default retry policy is used.
	Fetcher fetcher.Fetcher

	// MaxDocumentBytes is the per-document size ceiling. Zero means
	// DefaultMaxDocumentBytes.
	MaxDocumentBytes int64
}

// DefaultConfig returns a configuration with the default file store,
// HTTP fetcher and size ceiling.
func DefaultConfig() Config {
	return Config{
		MaxDocumentBytes: DefaultMaxDocumentBytes,
	}
}

// Cache is the document cache coordinator. Construct one long-lived
// instance with New and share it; all cache mutation funnels through it.
type Cache struct {
	// mu serializes all store access. The network fetch and its backoff
	// sleeps happen outside the mutex.
	mu      sync.Mutex
	store   store.Store
	fetcher fetcher.Fetcher
	flight  singleflight.Group

	maxBytes int64
	logger   zerolog.Logger
}

// New creates a document cache.
func New(cfg Config) (*Cache, error) {
	if cfg.MaxDocumentBytes < 0 {
		return nil, fmt.Errorf("max document bytes must not be negative (got %d)", cfg.MaxDocumentBytes)
	}
	if cfg.MaxDocumentBytes == 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}

	if cfg.Store == nil {
		dir := cfg.CacheDir
		if dir == "" {
			d, err := store.DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = d
		}
		cfg.Store = store.NewFileStore(dir)
	}

	if cfg.Fetcher == nil {
		cfg.Fetcher = fetcher.New(fetcher.DefaultConfig())
	}

	return &Cache{
		store:    cfg.Store,
		fetcher:  cfg.Fetcher,
		maxBytes: cfg.MaxDocumentBytes,
		logger:   log.With().Str("component", "doccache").Logger(),
	}, nil
}

// FetchDocument returns the document at rawURL, serving from the cache
// when possible and fetching with retry on a miss. Successful fetches
// within the size ceiling are written through to the store best-effort.
func (c *Cache) FetchDocument(ctx context.Context, rawURL string) ([]byte, error) {
	key, err := parseKey(rawURL)
	if err != nil {
		DocumentRequests.WithLabelValues("invalid_url").Inc()
		return nil, err
	}

	if data, ok := c.readStore(key); ok {
		DocumentRequests.WithLabelValues("hit").Inc()
		c.logger.Debug().
			Str("url", rawURL).
			Int("bytes", len(data)).
			Msg("Cache hit")
		return data, nil
	}

	// Collapse concurrent misses for the same URL into one upstream fetch.
	v, err, shared := c.flight.Do(key.String(), func() (interface{}, error) {
		return c.fetchAndStore(ctx, key, rawURL)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug().Str("url", rawURL).Msg("Joined in-flight fetch")
	}
	return v.([]byte), nil
}

// fetchAndStore runs inside the singleflight group.
func (c *Cache) fetchAndStore(ctx context.Context, key store.Key, rawURL string) ([]byte, error) {
	// A previous flight may have written the entry between our miss and
	// this call being scheduled.
	if data, ok := c.readStore(key); ok {
		DocumentRequests.WithLabelValues("hit").Inc()
		return data, nil
	}

	start := time.Now()
	data, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, fetcher.ErrCancelled) {
			DocumentRequests.WithLabelValues("cancelled").Inc()
			c.logger.Debug().Str("url", rawURL).Msg("Fetch cancelled by caller")
			return nil, err
		}
		DocumentRequests.WithLabelValues("network_error").Inc()
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("Document fetch failed")
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	if int64(len(data)) > c.maxBytes {
		DocumentRequests.WithLabelValues("too_large").Inc()
		c.logger.Warn().
			Str("url", rawURL).
			Int("bytes", len(data)).
			Int64("limit", c.maxBytes).
			Msg("Document exceeds size ceiling, discarding")
		return nil, &FileTooLargeError{Size: int64(len(data)), Limit: c.maxBytes}
	}

	c.writeStore(key, data)

	DocumentRequests.WithLabelValues("fetched").Inc()
	FetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info().
		Str("url", rawURL).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Document fetched and cached")

	return data, nil
}

// GetCached returns the cached bytes for rawURL without ever touching the
// network. The second return is false when the document is not cached (or
// the URL is invalid).
func (c *Cache) GetCached(rawURL string) ([]byte, bool) {
	key, err := parseKey(rawURL)
	if err != nil {
		return nil, false
	}
	return c.readStore(key)
}

// Put inserts data into the cache for rawURL directly, bypassing the
// network path. Used to seed the cache from an already-downloaded payload.
// The size ceiling still applies.
func (c *Cache) Put(rawURL string, data []byte) error {
	key, err := parseKey(rawURL)
	if err != nil {
		return err
	}
	if int64(len(data)) > c.maxBytes {
		return &FileTooLargeError{Size: int64(len(data)), Limit: c.maxBytes}
	}
	c.writeStore(key, data)
	return nil
}

// Clear removes every cached document.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.ClearAll()
	CacheSizeBytes.Set(0)
	c.logger.Info().Msg("Cache cleared")
}

// SizeBytes returns the total size of all cached documents in bytes.
func (c *Cache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	size := c.store.TotalSize()
	CacheSizeBytes.Set(float64(size))
	return size
}

func (c *Cache) readStore(key store.Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Read(key)
}

func (c *Cache) writeStore(key store.Key, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Write(key, data)
}

// parseKey validates rawURL and derives its cache key.
func parseKey(rawURL string) (store.Key, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return store.KeyFor(rawURL), nil
}
