// internal/analytics/cache/cache.go
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"freelancer-analytics/internal/common/config"
	"freelancer-analytics/internal/common/database"
	"freelancer-analytics/internal/common/logger"
)

// Cache stores rendered answers by query fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

const DefaultTTL = 7 * 24 * time.Hour

// Fingerprint is the cache key of a raw query.
func Fingerprint(query string) string {
	return "query:" + md5Hex(query)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// New builds the configured backend. The returned close func releases the
// backend's connections.
func New(cfg config.Config, log logger.Logger) (Cache, func() error, error) {
	ttl := cfg.Cache.TTL()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Cache.Backend {
	case "", "file":
		c, err := NewFileCache(cfg.Cache.Dir, ttl, log)
		if err != nil {
			return nil, nil, err
		}
		return c, func() error { return nil }, nil
	case "redis":
		client := database.NewRedis(cfg.Database.Redis)
		return NewRedisCache(client.Client, ttl, log), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
