// internal/workers/verification/suggest-alternatives/handler.go
package suggestalternatives

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "suggest-alternatives"
)

var (
	ErrEnrichmentFailed = errors.New("ENRICHMENT_FAILED")
)

// Backend is the slice of the backend client enrichment needs.
type Backend interface {
	PostJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error)
}

type Handler struct {
	config  *Config
	backend Backend
	logger  logger.Logger
}

func NewHandler(config *Config, backend Backend, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		backend: backend,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle always completes: a missing alternatives list is a valid outcome.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.logger.Warn("unreadable job variables, skipping enrichment", map[string]interface{}{
			"error": err.Error(),
		})
		h.completeJob(client, job, &Output{})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, _ := h.Execute(ctx, &input)
	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return &Output{Alternatives: h.Suggest(ctx, input.Claims, input.Ingredients)}, nil
}

// Suggest looks up alternative products and absorbs every failure. A nil
// result means no alternatives should be shown.
func (h *Handler) Suggest(ctx context.Context, claims, ingredients string) []models.AlternativeProduct {
	alts, err := h.Lookup(ctx, claims, ingredients)
	if err != nil {
		reason := stderrors.Normalize(err).Reason()
		if reason == "" {
			reason = stderrors.GetErrorCategory(stderrors.Normalize(err).Code)
		}
		metrics.EnrichmentSkipped.WithLabelValues(reason).Inc()
		h.logger.Warn("alternatives unavailable, returning result without them", map[string]interface{}{
			"error":  err.Error(),
			"reason": reason,
		})
		return nil
	}
	return alts
}

// Lookup is the strict form of Suggest.
func (h *Handler) Lookup(ctx context.Context, claims, ingredients string) ([]models.AlternativeProduct, error) {
	body, err := h.backend.PostJSON(ctx, h.config.Endpoint, models.VerificationRequest{
		Claims:      claims,
		Ingredients: ingredients,
	})
	if err != nil {
		return nil, enrichmentError(err)
	}

	alts, err := models.DecodeAlternatives(body)
	if err != nil {
		return nil, enrichmentError(stderrors.NewPayloadDecodeError(h.config.Endpoint, err))
	}

	h.logger.Debug("alternatives fetched", map[string]interface{}{
		"count": len(alts),
	})
	return alts, nil
}

// enrichmentError tags cause with the category it failed in; the cause's own
// code stays reachable through HasCode.
func enrichmentError(cause error) error {
	reason := stderrors.GetErrorCategory(stderrors.Normalize(cause).Code)
	return fmt.Errorf("%w: %w", ErrEnrichmentFailed, stderrors.NewEnrichmentFailedError(reason, cause))
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
		"jobKey":       job.Key,
		"alternatives": len(output.Alternatives),
	})
}
