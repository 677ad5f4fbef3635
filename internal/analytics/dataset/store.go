// internal/analytics/dataset/store.go
package dataset

import (
	"context"
	"fmt"
	"sync"

	"freelancer-analytics/internal/common/logger"
)

// Source yields the raw earnings table.
type Source interface {
	Name() string
	Load(ctx context.Context) (Frame, error)
}

// Store loads and cleans the table once and then hands out the same read-only
// *Table. A failed load is not remembered, so the next call tries again.
type Store struct {
	source Source
	opts   CleanOptions
	logger logger.Logger

	mu    sync.Mutex
	table *Table
}

func NewStore(source Source, opts CleanOptions, log logger.Logger) *Store {
	return &Store{
		source: source,
		opts:   opts,
		logger: log.With(map[string]interface{}{"component": "dataset", "source": source.Name()}),
	}
}

func (s *Store) Table(ctx context.Context) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table != nil {
		return s.table, nil
	}

	frame, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error("dataset load failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("load %s: %w", s.source.Name(), err)
	}

	table, report, err := Build(frame, s.opts)
	if err != nil {
		s.logger.Error("dataset validation failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.logger.Info("dataset loaded", map[string]interface{}{
		"sourceRows": report.SourceRows,
		"duplicates": report.Duplicates,
		"outliers":   report.Outliers,
		"rows":       report.Rows,
	})
	for col, n := range report.Filled {
		if n > 0 {
			s.logger.Debug("missing values filled", map[string]interface{}{"column": string(col), "count": n})
		}
	}

	s.table = table
	return table, nil
}

// OptionsFromConfig converts configured column names, skipping unknown ones.
func OptionsFromConfig(required []string, quantile float64) CleanOptions {
	opts := CleanOptions{OutlierQuantile: quantile}
	for _, name := range required {
		if col, ok := KnownColumn(name); ok {
			opts.RequiredColumns = append(opts.RequiredColumns, col)
		}
	}
	return opts
}
