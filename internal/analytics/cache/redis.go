// internal/analytics/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freelancer-analytics/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "freelancer-analytics:"

// RedisCache shares answers between worker replicas. Expiry is left to Redis.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "cache", "backend": "redis"}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	c.logger.Debug("answer cached", map[string]interface{}{"key": key, "ttl": c.ttl.String()})
	return nil
}
