// internal/workers/analytics/answer-query/config.go
package answerquery

import (
	"time"

	"freelancer-analytics/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	UseCache bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:  60 * time.Second,
		UseCache: cfg.Cache.Enabled,
	}
	if cfg.Worker.Timeout > 0 {
		c.Timeout = time.Duration(cfg.Worker.Timeout) * time.Millisecond
	}
	return c
}
