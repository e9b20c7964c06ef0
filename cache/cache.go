package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cache memoizes expensive list and aggregate reads. It is an optimization,
// never a correctness dependency: implementations must degrade to misses when
// the backing store is unreachable and must never surface their own errors.
// Entry lifetime is a property of the implementation, not of callers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context, keys ...string)
}

// RedisCache is the production Cache backed by Redis. Every failure is logged
// and swallowed so a Redis outage turns reads into direct store reads. All
// entries share one TTL.
type RedisCache struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, log: log, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).
			Warn("cache get failed, falling through to store")
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).
			Warn("cache set failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).
			Warn("cache invalidation failed")
	}
}
