package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gurpsmanager/server/cache/local"
	cacheredis "github.com/gurpsmanager/server/cache/redis"
	"github.com/gurpsmanager/server/config"
)

// Cache defines the KV and sorted-set operations used by the sheet cache,
// the campaign rankings and token revocation.
type Cache interface {
	// KV
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Incr atomically adds one to an integer value, starting from 0.
	Incr(ctx context.Context, key string) (int64, error)

	// ZSet
	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZReplace atomically replaces the whole set; empty scores removes it.
	ZReplace(ctx context.Context, key string, scores map[string]float64) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZScore(ctx context.Context, key, member string) (float64, error)
}

// IsNotFound reports whether err is a missing-key error from either backend.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// NewCache returns a Cache backed by Redis if RedisAddr is set,
// otherwise returns an in-process LocalCache.
func NewCache(cfg config.CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	}
	return local.NewCache(local.Config{
		GCInterval: cfg.LocalGCInterval,
	})
}
