// internal/analytics/cache/file.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"freelancer-analytics/internal/common/logger"
)

type fileEntry struct {
	Timestamp *time.Time `json:"timestamp"`
	Data      *string    `json:"data"`
}

// FileCache keeps one JSON file per key under dir. Expired or unreadable
// entries are removed on read and reported as misses.
type FileCache struct {
	dir    string
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewFileCache(dir string, ttl time.Duration, log logger.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{
		dir:    dir,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "cache", "backend": "file"}),
		now:    time.Now,
	}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, md5Hex(key)+".json")
}

func (c *FileCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.path(key)
	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cache entry: %w", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Timestamp == nil || entry.Data == nil {
		c.logger.Warn("removing corrupted cache entry", map[string]interface{}{"file": p})
		c.remove(p)
		return "", false, nil
	}

	if c.now().Sub(*entry.Timestamp) > c.ttl {
		c.logger.Debug("removing expired cache entry", map[string]interface{}{"file": p})
		c.remove(p)
		return "", false, nil
	}

	return *entry.Data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UTC()
	raw, err := json.Marshal(fileEntry{Timestamp: &ts, Data: &value})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (c *FileCache) remove(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove cache entry", map[string]interface{}{"file": p, "error": err.Error()})
	}
}
