// internal/workers/verification/verify-manual/handler.go
package verifymanual

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
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "verify-manual"

	MissingInputMessage = "Please enter both claims and ingredients"
)

var (
	ErrVerificationFailed = errors.New("VERIFICATION_FAILED")
	ErrParseFailed        = errors.New("PARSE_FAILED")
)

type Backend interface {
	PostJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error)
}

// Enricher attaches alternatives on a best-effort basis.
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

// Execute is the manual-entry flow: it rejects blank inputs before calling
// VerifyManually.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Claims) == "" || strings.TrimSpace(input.Ingredients) == "" {
		return nil, stderrors.NewInvalidInputError(MissingInputMessage)
	}

	result, err := h.VerifyManually(ctx, input.Claims, input.Ingredients)
	if err != nil {
		return nil, err
	}
	return &Output{Result: *result}, nil
}

// VerifyManually runs the primary verification and then attaches
// alternatives if the enrichment lookup succeeds. Only the primary call can
// fail the operation.
func (h *Handler) VerifyManually(ctx context.Context, claims, ingredients string) (*models.VerificationResult, error) {
	result, err := h.Verify(ctx, claims, ingredients)
	if err != nil {
		return nil, err
	}

	if h.enricher != nil {
		if alts := h.enricher.Suggest(ctx, claims, ingredients); alts != nil {
			result.Alternatives = alts
		}
	}

	h.logger.Info("verification completed", map[string]interface{}{
		"verdict":           string(result.Verdict),
		"trustabilityScore": result.TrustabilityScore,
		"alternatives":      len(result.Alternatives),
	})
	return result, nil
}

// Verify performs only the primary call and the two-stage envelope decode.
func (h *Handler) Verify(ctx context.Context, claims, ingredients string) (*models.VerificationResult, error) {
	body, err := h.backend.PostJSON(ctx, h.config.Endpoint, models.VerificationRequest{
		Claims:      claims,
		Ingredients: ingredients,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	result, err := models.DecodeVerification(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, stderrors.NewPayloadDecodeError(h.config.Endpoint, err))
	}
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
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":  job.Key,
		"verdict": string(output.Result.Verdict),
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := stderrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
