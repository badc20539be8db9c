// internal/workers/media/check-image/handler.go
package checkimage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	TaskType = "check-image"
)

var (
	ErrUnsupportedImage = errors.New("UNSUPPORTED_IMAGE_SOURCE")
	ErrTextExtraction   = errors.New("TEXT_EXTRACTION_FAILED")
)

// Backend is the slice of the backend client the OCR bridge needs.
type Backend interface {
	PostMultipart(ctx context.Context, endpoint string, file backendhttp.MultipartFile) ([]byte, error)
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
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

// Handle always completes the job: OCR failures travel in the output
// variables so the process can offer a retry on the same image.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		input = Input{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, _ := h.Execute(ctx, &input)
	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute never returns an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return &Output{ImageCheckResult: h.CheckImage(ctx, input.Image)}, nil
}

// CheckImage uploads the image for text extraction. Every failure, including
// an unsupported source representation, is reported in the result.
func (h *Handler) CheckImage(ctx context.Context, image string) models.ImageCheckResult {
	text, err := h.extract(ctx, image)
	if err != nil {
		h.logger.Warn("text extraction failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(stderrors.Normalize(err).Code),
		})
		return models.ImageCheckResult{
			ExtractedText: "",
			Success:       false,
			Error:         err.Error(),
		}
	}
	return models.ImageCheckResult{ExtractedText: text, Success: true}
}

func (h *Handler) extract(ctx context.Context, image string) (string, error) {
	data, contentType, err := h.resolve(ctx, image)
	if err != nil {
		return "", err
	}

	body, err := h.backend.PostMultipart(ctx, h.config.Endpoint, backendhttp.MultipartFile{
		Field:       h.config.FileField,
		Filename:    h.config.Filename,
		ContentType: contentType,
		Content:     data,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTextExtraction, err)
	}

	var env models.OCREnvelope
	if err := backendhttp.DecodeJSON(h.config.Endpoint, body, &env); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTextExtraction, err)
	}
	if env.ExtractedText == nil {
		return "", nil
	}
	return *env.ExtractedText, nil
}

func (h *Handler) resolve(ctx context.Context, image string) ([]byte, string, error) {
	switch {
	case models.IsBlobURI(image):
		data, contentType, err := h.backend.Fetch(ctx, image[len("blob:"):])
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrTextExtraction, err)
		}
		return data, contentType, nil

	case models.IsDataURI(image):
		d, err := models.ParseDataURI(image)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrTextExtraction, stderrors.NewImageLoadFailedError(err))
		}
		return d.Data, d.MediaType, nil
	}

	return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedImage, stderrors.NewUnsupportedImageSourceError(image))
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
		"success": output.Success,
	})
}
