// internal/workers/verification/extract-url/handler.go
package extracturl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "claimcheck/internal/common/errors"
	backendhttp "claimcheck/internal/common/http"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "extract-url"
)

var (
	ErrExtractRequestFailed = errors.New("EXTRACT_REQUEST_FAILED")
	ErrParseFailed          = errors.New("PARSE_FAILED")
)

type Backend interface {
	PostJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error)
}

type Enricher interface {
	Suggest(ctx context.Context, claims, ingredients string) []models.AlternativeProduct
}

type Handler struct {
	config     *Config
	backend    Backend
	enricher   Enricher
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, backend Backend, enricher Enricher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		backend:    backend,
		enricher:   enricher,
		logger:     scoped,
		errHandler: stderrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, stderrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, stderrors.NewInvalidInputError("url is required")
	}
	result, err := h.ExtractFromURL(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	return &Output{Extraction: *result}, nil
}

// ExtractFromURL asks the backend to scrape rawURL. The status field is
// returned as-is; callers branch on it. Structured successes get a
// best-effort alternatives lookup.
func (h *Handler) ExtractFromURL(ctx context.Context, rawURL string) (*models.ExtractURLResult, error) {
	body, err := h.backend.PostJSON(ctx, h.config.Endpoint, extractRequest{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractRequestFailed, err)
	}

	var result models.ExtractURLResult
	if err := backendhttp.DecodeJSON(h.config.Endpoint, body, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	// Alternatives are only ever attached here.
	result.Alternatives = nil

	h.logger.Info("url extracted", map[string]interface{}{
		"status":            string(result.Status),
		"rawResponseLength": len(result.RawResponse),
	})

	if result.Status != models.ExtractStatusSuccess || h.enricher == nil {
		return &result, nil
	}
	product, ok := result.Structured()
	if !ok {
		return &result, nil
	}
	if alts := h.enricher.Suggest(ctx, product.Claims, product.Ingredients); alts != nil {
		result.Alternatives = alts
	}
	return &result, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
		"status": string(output.Extraction.Status),
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := stderrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
