// Package cache is a JSON cache over Redis. When Redis is not connected
// every read misses and every write is a no-op, so callers fall through to
// the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/metrics"
)

// RDB is nil until Connect succeeds.
var RDB *redis.Client

var group singleflight.Group

// Connect dials Redis and pings it. On failure RDB stays nil.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		RDB = nil
		return fmt.Errorf("cache: redis ping %s: %w", config.RedisAddr(), err)
	}
	RDB = client
	return nil
}

// Close releases the Redis connection pool.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// Get unmarshals the value under key into dest and reports a hit.
func Get(ctx context.Context, key string, dest any) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WithCtx(ctx).Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		logger.WithCtx(ctx).Warn("cache value undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key for ttl.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return RDB.Set(ctx, key, data, ttl).Err()
}

// Del removes keys.
func Del(ctx context.Context, keys ...string) error {
	if RDB == nil {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}

// Remember returns the cached value under key, or calls load, caches its
// result for ttl and returns it. Concurrent misses on one key share a
// single load call.
func Remember[T any](ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if Get(ctx, key, &cached) {
		metrics.CacheHits.WithLabelValues(key).Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues(key).Inc()

	v, err, _ := group.Do(key, func() (any, error) {
		fresh, err := load(ctx)
		if err != nil {
			return fresh, err
		}
		if err := Set(ctx, key, fresh, ttl); err != nil {
			logger.WithCtx(ctx).Warn("cache set failed", "key", key, "error", err)
		}
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
