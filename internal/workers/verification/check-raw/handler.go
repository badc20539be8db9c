// internal/workers/verification/check-raw/handler.go
package checkraw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "check-raw"
)

var (
	ErrVerificationFailed = errors.New("VERIFICATION_FAILED")
	ErrParseFailed        = errors.New("PARSE_FAILED")
)

type Backend interface {
	PostQuery(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

type Handler struct {
	config     *Config
	backend    Backend
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, backend Backend, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		backend:    backend,
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
	if strings.TrimSpace(input.RawText) == "" {
		return nil, stderrors.NewInvalidInputError("rawText is required")
	}
	result, err := h.CheckRawText(ctx, input.RawText)
	if err != nil {
		return nil, err
	}
	return &Output{Result: *result}, nil
}

// CheckRawText sends rawText unmodified as a query parameter and decodes the
// verification envelope from the response.
func (h *Handler) CheckRawText(ctx context.Context, rawText string) (*models.VerificationResult, error) {
	params := url.Values{}
	params.Set(h.config.QueryParam, rawText)

	body, err := h.backend.PostQuery(ctx, h.config.Endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	result, err := models.DecodeVerification(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, stderrors.NewPayloadDecodeError(h.config.Endpoint, err))
	}

	h.logger.Info("raw text verified", map[string]interface{}{
		"verdict":           string(result.Verdict),
		"trustabilityScore": result.TrustabilityScore,
		"rawTextLength":     len(rawText),
	})
	return result, nil
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
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := stderrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
