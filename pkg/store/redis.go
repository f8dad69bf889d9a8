package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// redisKeyPrefix namespaces all entries so ClearAll never touches
	// foreign keys in a shared Redis instance.
	redisKeyPrefix = "pdfcache:doc:"

	// redisOpTimeout bounds each Redis operation. The Store interface is
	// synchronous, so the timeout is applied internally.
	redisOpTimeout = 5 * time.Second
)

// RedisStore is a Redis-backed Store for server-side deployments where the
// cache is shared between proxy instances. Entries are stored without TTL:
// a present entry is always valid (documents are immutable by URL) and is
// removed only by ClearAll.
type RedisStore struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		logger: log.With().Str("component", "redis-store").Logger(),
	}
}

// Read implements Store.
func (s *RedisStore) Read(key Key) ([]byte, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	data, err := s.redis.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			StoreErrors.WithLabelValues("redis", "read").Inc()
			s.logger.Debug().Err(err).Str("key", key.String()).Msg("Redis read failed, treating as miss")
		}
		return nil, false
	}
	return data, true
}

// Write implements Store.
func (s *RedisStore) Write(key Key, data []byte) {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.redis.Set(ctx, redisKeyPrefix+key.String(), data, 0).Err(); err != nil {
		StoreErrors.WithLabelValues("redis", "write").Inc()
		s.logger.Debug().Err(err).Str("key", key.String()).Msg("Redis write failed")
		return
	}
	StoreWrites.WithLabelValues("redis").Inc()
}

// ClearAll implements Store. Entries are discovered with SCAN so a large
// cache never blocks the Redis server the way KEYS would.
func (s *RedisStore) ClearAll() {
	ctx, cancel := s.opContext()
	defer cancel()

	iter := s.redis.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			StoreErrors.WithLabelValues("redis", "clear").Inc()
			s.logger.Warn().Err(err).Msg("Redis delete failed during clear")
		}
	}
	if err := iter.Err(); err != nil {
		StoreErrors.WithLabelValues("redis", "clear").Inc()
		s.logger.Warn().Err(err).Msg("Redis scan failed during clear")
	}
}

// TotalSize implements Store. Sums STRLEN over all entries.
func (s *RedisStore) TotalSize() int64 {
	ctx, cancel := s.opContext()
	defer cancel()

	var total int64
	iter := s.redis.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.redis.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			StoreErrors.WithLabelValues("redis", "size").Inc()
			continue
		}
		total += n
	}
	if err := iter.Err(); err != nil {
		StoreErrors.WithLabelValues("redis", "size").Inc()
		return 0
	}
	return total
}

func (s *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}
