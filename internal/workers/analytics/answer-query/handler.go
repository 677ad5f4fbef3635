// internal/workers/analytics/answer-query/handler.go
package answerquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"freelancer-analytics/internal/analytics/pipeline"
	"freelancer-analytics/internal/analytics/render"
	apperrors "freelancer-analytics/internal/common/errors"
	"freelancer-analytics/internal/common/logger"
	"freelancer-analytics/internal/common/metrics"
)

const (
	TaskType = "answer-freelancer-query"
)

type Asker interface {
	Ask(ctx context.Context, query string, opts pipeline.Options) (*pipeline.Answer, error)
}

type Handler struct {
	config     *Config
	service    Asker
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service Asker, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// parseInput validates the job variables before decoding them.
func parseInput(variables string) (*Input, error) {
	result, err := inputSchema.ValidateBytes([]byte(variables))
	if err != nil {
		return nil, apperrors.NewInvalidQueryInputError(fmt.Sprintf("parse input: %v", err))
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidQueryInputError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidQueryInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Query) == "" {
		return nil, apperrors.NewInvalidQueryInputError("query must not be empty")
	}

	useCache := h.config.UseCache
	if input.UseCache != nil {
		useCache = *input.UseCache
	}

	ans, err := h.service.Ask(ctx, input.Query, pipeline.Options{UseCache: useCache})
	if err != nil {
		return nil, err
	}
	if ans.RenderErr != nil {
		if errors.Is(ans.RenderErr, render.ErrLLMTimeout) {
			return nil, apperrors.NewLLMTimeoutError(ans.RenderErr)
		}
		return nil, apperrors.NewLLMSynthesisFailedError(ans.RenderErr)
	}

	output := &Output{
		Answer:    ans.Text,
		Cached:    ans.Cached,
		RequestID: ans.RequestID,
	}
	if ans.Intent != nil {
		output.Intent = string(ans.Intent.Kind)
		output.Subkind = ans.Intent.Subkind
	}
	if ans.Result != nil {
		output.Statistics = ans.Result.Statistics
		output.Error = ans.Result.Error
	}

	h.logger.Info("query answered", map[string]interface{}{
		"requestId": ans.RequestID,
		"outcome":   ans.Outcome,
		"cached":    ans.Cached,
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.AsStandard(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
