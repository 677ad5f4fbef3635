// internal/analytics/pipeline/service.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freelancer-analytics/internal/analytics/cache"
	"freelancer-analytics/internal/analytics/dataset"
	"freelancer-analytics/internal/analytics/intent"
	"freelancer-analytics/internal/analytics/render"
	"freelancer-analytics/internal/analytics/stats"
	apperrors "freelancer-analytics/internal/common/errors"
	"freelancer-analytics/internal/common/logger"
	"freelancer-analytics/internal/common/metrics"
	"freelancer-analytics/internal/common/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OutcomeCached       = "cached"
	OutcomeAnswered     = "answered"
	OutcomeUnanswerable = "unanswerable"
	OutcomeRenderFailed = "render_failed"
	OutcomeFailed       = "failed"
)

type TableSource interface {
	Table(ctx context.Context) (*dataset.Table, error)
}

type Renderer interface {
	Render(ctx context.Context, query string, stats map[string]interface{}) (string, error)
}

// AuditLog is the query audit trail; *querylog.QueryLogger satisfies it.
type AuditLog interface {
	Log(query, status, message string, fields ...zap.Field)
	LogAnswer(query, response string, metadata map[string]interface{})
}

type Options struct {
	UseCache bool
}

// Answer is the outcome of one Ask. Intent and Result are nil for answers
// served from the cache.
type Answer struct {
	RequestID string         `json:"requestId"`
	Query     string         `json:"query"`
	Text      string         `json:"answer"`
	Cached    bool           `json:"cached"`
	Outcome   string         `json:"outcome"`
	Intent    *intent.Intent `json:"intent,omitempty"`
	Result    *stats.Result  `json:"result,omitempty"`
	Rows      int            `json:"rows"`

	// RenderErr is set when Text is the failure notice instead of a model answer.
	RenderErr error `json:"-"`
}

// Service composes the classifier, selector, renderer, cache and audit log
// into one request.
type Service struct {
	tables   TableSource
	renderer Renderer
	cache    cache.Cache
	audit    AuditLog
	obs      *observability.Observability
	logger   logger.Logger
	newID    func() string
}

// NewService wires the pipeline. c, audit and obs may be nil.
func NewService(tables TableSource, renderer Renderer, c cache.Cache, audit AuditLog, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		tables:   tables,
		renderer: renderer,
		cache:    c,
		audit:    audit,
		obs:      obs,
		logger:   log.With(map[string]interface{}{"component": "pipeline"}),
		newID:    uuid.NewString,
	}
}

// Ask answers one query. Errors are *apperrors.StandardError values for the
// failures that end the request: the table could not be loaded or it has no
// earnings column. A renderer failure is not an error; it is reported through
// Answer.RenderErr and the answer is not cached.
func (s *Service) Ask(ctx context.Context, query string, opts Options) (*Answer, error) {
	start := time.Now()
	ans := &Answer{RequestID: s.newID(), Query: query}
	log := s.logger.With(map[string]interface{}{"requestId": ans.RequestID})

	key := cache.Fingerprint(query)
	if opts.UseCache && s.cache != nil {
		if text, ok := s.lookup(ctx, log, key); ok {
			ans.Text = text
			ans.Cached = true
			ans.Outcome = OutcomeCached
			s.auditLog(ans, "info", "answer served from cache")
			s.finish(ctx, ans, string(intent.KindUnknown), start)
			return ans, nil
		}
	}

	table, err := s.tables.Table(ctx)
	if err != nil {
		ans.Outcome = OutcomeFailed
		s.auditLog(ans, "error", fmt.Sprintf("data error: %v", err))
		s.finish(ctx, ans, string(intent.KindUnknown), start)
		return nil, apperrors.NewDatasetLoadFailedError(err)
	}
	ans.Rows = table.Len()

	in := intent.Classify(query)
	ans.Intent = &in
	log.Debug("query classified", map[string]interface{}{
		"intent":  string(in.Kind),
		"subtype": in.Subkind,
		"params":  map[string]interface{}(in.Params),
		"trace":   len(in.Trace),
	})

	res, err := stats.Select(in, table)
	if err != nil {
		ans.Outcome = OutcomeFailed
		s.auditLog(ans, "error", fmt.Sprintf("data error: %v", err))
		s.finish(ctx, ans, string(in.Kind), start)
		if errors.Is(err, stats.ErrMissingEarningsColumn) {
			return nil, apperrors.NewEarningsColumnMissingError(err)
		}
		return nil, err
	}
	ans.Result = &res
	metrics.StatisticsBranch.WithLabelValues(string(res.Branch)).Inc()

	cacheable := true
	if res.Failed() {
		ans.Text = fmt.Sprintf("Unable to answer the query: %s.", res.Error)
		ans.Outcome = OutcomeUnanswerable
	} else {
		renderStart := time.Now()
		text, err := s.renderer.Render(ctx, query, res.Statistics)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.LLMRequestDuration.WithLabelValues(status).Observe(time.Since(renderStart).Seconds())

		if err != nil {
			log.Error("answer rendering failed", map[string]interface{}{"error": err.Error()})
			ans.Text = render.FailureText(err)
			ans.RenderErr = err
			ans.Outcome = OutcomeRenderFailed
			cacheable = false
		} else {
			ans.Text = text
			ans.Outcome = OutcomeAnswered
		}
	}

	if opts.UseCache && s.cache != nil && cacheable {
		if err := s.cache.Set(ctx, key, ans.Text); err != nil {
			log.Warn("answer cache write failed", map[string]interface{}{
				"error": apperrors.NewCacheWriteFailedError(err).Error(),
			})
		}
	}

	s.auditLog(ans, "info", "query processed")
	if s.audit != nil {
		s.audit.LogAnswer(query, ans.Text, map[string]interface{}{
			"requestId": ans.RequestID,
			"intent":    string(in.Kind),
			"subtype":   in.Subkind,
			"branch":    string(res.Branch),
		})
	}
	s.finish(ctx, ans, string(in.Kind), start)
	return ans, nil
}

// lookup treats a failing cache as a miss.
func (s *Service) lookup(ctx context.Context, log logger.Logger, key string) (string, bool) {
	text, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("answer cache read failed", map[string]interface{}{
			"error": apperrors.NewCacheReadFailedError(err).Error(),
		})
		s.recordCache(ctx, "error")
		return "", false
	case !ok || text == "":
		s.recordCache(ctx, "miss")
		return "", false
	default:
		s.recordCache(ctx, "hit")
		return text, true
	}
}

func (s *Service) recordCache(ctx context.Context, result string) {
	metrics.CacheLookups.WithLabelValues(result).Inc()
	s.obs.RecordCacheLookup(ctx, result)
}

func (s *Service) auditLog(ans *Answer, status, message string) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ans.Query, status, message, zap.String("requestId", ans.RequestID))
}

func (s *Service) finish(ctx context.Context, ans *Answer, kind string, start time.Time) {
	elapsed := time.Since(start)
	metrics.QueriesTotal.WithLabelValues(kind, ans.Outcome).Inc()
	s.obs.RecordQuery(ctx, kind, ans.Outcome)
	s.obs.RecordQueryDuration(ctx, elapsed, ans.Outcome)

	s.logger.Info("query finished", map[string]interface{}{
		"requestId": ans.RequestID,
		"intent":    kind,
		"outcome":   ans.Outcome,
		"cached":    ans.Cached,
		"duration":  elapsed.String(),
	})
}
