// internal/analytics/cache/cache_test.go
package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"freelancer-analytics/internal/common/config"
	"freelancer-analytics/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupFileCache(t *testing.T) *FileCache {
	t.Helper()
	c, err := NewFileCache(t.TempDir(), DefaultTTL, logger.NewTestLogger(t))
	require.NoError(t, err)
	return c
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// ==========================
// Fingerprint Tests
// ==========================

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "query:5d41402abc4b2a76b9719d911017c592", Fingerprint("hello"))
	assert.Equal(t, Fingerprint("Средний доход"), Fingerprint("Средний доход"))
	assert.NotEqual(t, Fingerprint("a"), Fingerprint("A"))
}

// ==========================
// File Cache Tests
// ==========================

func TestFileCache_SetGet(t *testing.T) {
	c := setupFileCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "query:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "query:abc", "Crypto freelancers earn more."))

	got, ok, err := c.Get(ctx, "query:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Crypto freelancers earn more.", got)

	_, err = os.Stat(filepath.Join(c.dir, md5Hex("query:abc")+".json"))
	assert.NoError(t, err)
}

func TestFileCache_Overwrite(t *testing.T) {
	c := setupFileCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "first"))
	require.NoError(t, c.Set(ctx, "k", "second"))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestFileCache_Expired(t *testing.T) {
	c := setupFileCache(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "k", "answer"))

	c.now = func() time.Time { return base.Add(DefaultTTL - time.Minute) }
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "entry is still fresh")

	c.now = func() time.Time { return base.Add(DefaultTTL + time.Minute) }
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(c.path("k"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "expired entry is removed")
}

func TestFileCache_Corrupted(t *testing.T) {
	bodies := map[string]string{
		"invalid json":      `{"timestamp": `,
		"missing data":      `{"timestamp": "2024-03-01T12:00:00Z"}`,
		"missing timestamp": `{"data": "answer"}`,
		"bad timestamp":     `{"timestamp": "yesterday", "data": "answer"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := setupFileCache(t)
			require.NoError(t, os.WriteFile(c.path("k"), []byte(body), 0o644))

			_, ok, err := c.Get(context.Background(), "k")
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = os.Stat(c.path("k"))
			assert.True(t, errors.Is(err, os.ErrNotExist), "corrupted entry is removed")
		})
	}
}

func TestFileCache_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	_, err := NewFileCache(dir, DefaultTTL, logger.NewTestLogger(t))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// ==========================
// Redis Cache Tests
// ==========================

func TestRedisCache_SetGet(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCache(client, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "query:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "query:abc", "answer"))

	got, ok, err := c.Get(ctx, "query:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "answer", got)

	assert.True(t, mr.Exists("freelancer-analytics:query:abc"))
	assert.Equal(t, time.Hour, mr.TTL("freelancer-analytics:query:abc"))
}

func TestRedisCache_Expiry(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCache(client, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "answer"))
	mr.FastForward(2 * time.Hour)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	mock.ExpectGet("freelancer-analytics:k").SetErr(errors.New("connection reset"))
	_, ok, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection reset")

	mock.ExpectSet("freelancer-analytics:k", "v", time.Hour).SetErr(errors.New("READONLY"))
	err = c.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Backend Selection Tests
// ==========================

func TestNew_Backends(t *testing.T) {
	mr, _ := setupRedis(t)

	t.Run("file", func(t *testing.T) {
		cfg := config.Config{Cache: config.CacheConfig{Backend: "file", Dir: t.TempDir(), TTLDays: 1}}
		c, closeFn, err := New(cfg, logger.NewTestLogger(t))
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &FileCache{}, c)
	})

	t.Run("redis", func(t *testing.T) {
		cfg := config.Config{
			Cache:    config.CacheConfig{Backend: "redis", TTLDays: 1},
			Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr()}},
		}
		c, closeFn, err := New(cfg, logger.NewTestLogger(t))
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, c.Set(context.Background(), "k", "v"))
		assert.Equal(t, 24*time.Hour, mr.TTL("freelancer-analytics:k"))
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Config{Cache: config.CacheConfig{Backend: "memcached"}}
		_, _, err := New(cfg, logger.NewTestLogger(t))
		assert.Error(t, err)
	})
}
