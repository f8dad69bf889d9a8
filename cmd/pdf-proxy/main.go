// Command pdf-proxy is a caching HTTP proxy for PDF documents: it serves
// documents by URL through the shared document cache, so a fleet of mobile
// clients can share one warm cache.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/papervault/pdfcache/pkg/doccache"
	"github.com/papervault/pdfcache/pkg/fetcher"
	"github.com/papervault/pdfcache/pkg/logging"
	"github.com/papervault/pdfcache/pkg/store"
)

type config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	CacheDir       string `env:"CACHE_DIR"`
	RedisURL       string `env:"REDIS_URL"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool   `env:"LOG_PRETTY"`
	MaxDocumentMiB int64  `env:"MAX_DOCUMENT_MIB" envDefault:"50"`
	UserAgent      string `env:"USER_AGENT" envDefault:"pdf-proxy/0.1.0"`
}

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	logger := logging.NewLogger("pdf-proxy")

	// Store backend: Redis when configured, local disk otherwise.
	var docStore store.Store
	probe := func(context.Context) error { return nil }

	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.RedisURL).Msg("Using Redis store")
		docStore = store.NewRedisStore(redisClient)
		probe = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		dir := cfg.CacheDir
		if dir == "" {
			d, err := store.DefaultDir()
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to resolve cache directory")
			}
			dir = d
		}
		logger.Info().Str("dir", dir).Msg("Using file store")
		docStore = store.NewFileStore(dir)
	}

	cache, err := doccache.New(doccache.Config{
		Store:            docStore,
		MaxDocumentBytes: cfg.MaxDocumentMiB << 20,
		Fetcher:          fetcher.New(fetcher.Config{UserAgent: cfg.UserAgent}),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create document cache")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(probe))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/pdf", pdfHandler(cache))
	mux.HandleFunc("/cache/size", cacheSizeHandler(cache))
	mux.HandleFunc("/cache", cacheClearHandler(cache))

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("Starting pdf-proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func readyHandler(probe func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := probe(ctx); err != nil {
			http.Error(w, "store backend unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// pdfHandler serves GET /pdf?url=<document-url> through the cache.
func pdfHandler(cache *doccache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rawURL := r.URL.Query().Get("url")
		if rawURL == "" {
			http.Error(w, "missing url parameter", http.StatusBadRequest)
			return
		}

		data, err := cache.FetchDocument(r.Context(), rawURL)
		if err != nil {
			writeFetchError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			log.Debug().Err(err).Msg("Failed to write response body")
		}
	}
}

func writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *doccache.FileTooLargeError
	switch {
	case errors.Is(err, doccache.ErrInvalidURL):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &tooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, fetcher.ErrCancelled):
		// Client went away; nothing useful to write.
		log.Debug().Str("url", r.URL.Query().Get("url")).Msg("Request cancelled by client")
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func cacheSizeHandler(cache *doccache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"size_bytes": cache.SizeBytes()})
	}
}

func cacheClearHandler(cache *doccache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		cache.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}
