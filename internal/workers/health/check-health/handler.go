// internal/workers/health/check-health/handler.go
package checkhealth

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
	"claimcheck/internal/common/validation"
	"claimcheck/internal/models"
)

const (
	TaskType = "check-health"
)

var (
	ErrInvalidProfile    = errors.New("INVALID_PROFILE")
	ErrHealthCheckFailed = errors.New("HEALTH_CHECK_FAILED")
)

var schema = validation.MustCompile(profileSchema)

type Backend interface {
	PostJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error)
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
	assessment, err := h.CheckHealth(ctx, input.Profile)
	if err != nil {
		return nil, err
	}
	return &Output{Assessment: *assessment}, nil
}

// CheckHealth validates the profile and returns the backend assessment
// unchanged.
func (h *Handler) CheckHealth(ctx context.Context, profile models.HealthCheckInput) (*models.HealthCheckResponse, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	body, err := h.backend.PostJSON(ctx, h.config.Endpoint, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHealthCheckFailed, err)
	}

	var assessment models.HealthCheckResponse
	if err := backendhttp.DecodeJSON(h.config.Endpoint, body, &assessment); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHealthCheckFailed, err)
	}

	h.logger.Info("health assessment received", map[string]interface{}{
		"overallStatus": assessment.OverallStatus,
		"risks":         len(assessment.HealthRisks),
	})
	return &assessment, nil
}

// ValidateProfile checks the questionnaire against its JSON schema.
func ValidateProfile(profile models.HealthCheckInput) error {
	res, err := schema.Validate(profile)
	if err != nil {
		return stderrors.NewInternalError(err)
	}
	if !res.Valid {
		return fmt.Errorf("%w: %w", ErrInvalidProfile,
			stderrors.NewInvalidInputError("invalid health profile: "+strings.Join(res.GetErrorMessages(), "; ")))
	}
	return nil
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
