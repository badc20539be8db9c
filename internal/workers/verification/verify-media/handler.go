// internal/workers/verification/verify-media/handler.go
package verifymedia

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
	cropimage "claimcheck/internal/workers/media/crop-image"
)

const (
	TaskType = "verify-media"

	MissingTextMessage = "Please extract or enter both claims and ingredients text"
)

var (
	ErrTextExtraction = errors.New("TEXT_EXTRACTION_FAILED")
)

type Cropper interface {
	Execute(ctx context.Context, input *cropimage.Input) (*cropimage.Output, error)
}

type TextExtractor interface {
	CheckImage(ctx context.Context, image string) models.ImageCheckResult
}

type Verifier interface {
	VerifyManually(ctx context.Context, claims, ingredients string) (*models.VerificationResult, error)
}

type Handler struct {
	config     *Config
	cropper    Cropper
	ocr        TextExtractor
	verifier   Verifier
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, cropper Cropper, ocr TextExtractor, verifier Verifier, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		cropper:    cropper,
		ocr:        ocr,
		verifier:   verifier,
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

// Execute reads the claims image, then the ingredients image, then verifies
// the two texts. Steps run strictly in order; an OCR failure stops the flow
// before verification.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	claims, err := h.readText(ctx, "claims", input.Claims)
	if err != nil {
		return nil, err
	}
	ingredients, err := h.readText(ctx, "ingredients", input.Ingredients)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(claims) == "" || strings.TrimSpace(ingredients) == "" {
		return nil, stderrors.NewInvalidInputError(MissingTextMessage)
	}

	result, err := h.verifier.VerifyManually(ctx, claims, ingredients)
	if err != nil {
		return nil, err
	}

	return &Output{
		ClaimsText:      claims,
		IngredientsText: ingredients,
		Result:          *result,
	}, nil
}

func (h *Handler) readText(ctx context.Context, label string, in ImageInput) (string, error) {
	if strings.TrimSpace(in.Text) != "" {
		return in.Text, nil
	}
	if strings.TrimSpace(in.Source) == "" {
		return "", nil
	}

	prepared, err := h.cropper.Execute(ctx, &cropimage.Input{ImageSource: in.Source, CropArea: in.Crop})
	if err != nil {
		return "", err
	}

	res := h.ocr.CheckImage(ctx, prepared.CroppedImage)
	if !res.Success {
		h.logger.Warn("text extraction failed", map[string]interface{}{
			"image": label,
			"error": res.Error,
		})
		return "", fmt.Errorf("%w: %s: %w", ErrTextExtraction, label, stderrors.NewTextExtractionFailedError(res.Error))
	}

	h.logger.Debug("text extracted", map[string]interface{}{
		"image":   label,
		"cropped": in.Crop != nil,
		"length":  len(res.ExtractedText),
	})
	return res.ExtractedText, nil
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
