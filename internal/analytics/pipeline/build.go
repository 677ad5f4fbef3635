// internal/analytics/pipeline/build.go
package pipeline

import (
	"context"
	"fmt"

	"freelancer-analytics/internal/analytics/cache"
	"freelancer-analytics/internal/analytics/dataset"
	"freelancer-analytics/internal/analytics/querylog"
	"freelancer-analytics/internal/analytics/render"
	"freelancer-analytics/internal/common/config"
	"freelancer-analytics/internal/common/database"
	"freelancer-analytics/internal/common/logger"
	"freelancer-analytics/internal/common/observability"

	"go.uber.org/zap/zapcore"
)

// Runtime is a fully wired Service plus the resources it holds open.
type Runtime struct {
	Service *Service
	Store   *dataset.Store
	Log     *querylog.QueryLogger

	closers []func() error
}

func (r *Runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// OpenStore builds the dataset store for the configured source. The returned
// func closes the database pool for the postgres source.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*dataset.Store, func() error, error) {
	opts := dataset.OptionsFromConfig(cfg.Dataset.RequiredColumns, cfg.Dataset.OutlierQuantile)

	switch cfg.Dataset.Source {
	case "", "csv":
		return dataset.NewStore(dataset.NewCSVSource(cfg.Dataset.Path), opts, log), func() error { return nil }, nil
	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return dataset.NewStore(dataset.NewPostgresSource(pg.DB, cfg.Dataset.Table), opts, log), pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// Open wires the store, renderer, answer cache and query log from cfg.
// console mirrors the query log and may be nil.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger, console zapcore.WriteSyncer, obs *observability.Observability) (*Runtime, error) {
	rt := &Runtime{}

	store, closeStore, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rt.Store = store
	rt.closers = append(rt.closers, closeStore)

	var answers cache.Cache
	if cfg.Cache.Enabled {
		c, closeCache, err := cache.New(*cfg, log)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("answer cache: %w", err)
		}
		answers = c
		rt.closers = append(rt.closers, closeCache)
	}

	ql, err := querylog.New(cfg.Logging.QueryLogDir, console)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Log = ql
	rt.closers = append(rt.closers, ql.Close)

	renderer := render.NewClient(render.ConfigFrom(cfg.LLM), log)
	rt.Service = NewService(store, renderer, answers, ql, obs, log)
	return rt, nil
}
