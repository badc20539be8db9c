// internal/workers/verification/verify-url/handler.go
package verifyurl

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
	"claimcheck/internal/common/validation"
	"claimcheck/internal/models"
)

const (
	TaskType = "verify-url"

	InvalidURLMessage = "Please enter a valid URL"
)

var (
	ErrExtractionFailed = errors.New("EXTRACTION_FAILED")
)

type Extractor interface {
	ExtractFromURL(ctx context.Context, rawURL string) (*models.ExtractURLResult, error)
}

type RawTextChecker interface {
	CheckRawText(ctx context.Context, rawText string) (*models.VerificationResult, error)
}

type Enricher interface {
	Suggest(ctx context.Context, claims, ingredients string) []models.AlternativeProduct
}

type Handler struct {
	config     *Config
	extractor  Extractor
	rawChecker RawTextChecker
	enricher   Enricher
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

type HandlerOptions struct {
	Config     *Config
	Extractor  Extractor
	RawChecker RawTextChecker
	Enricher   Enricher
	Logger     logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Extractor == nil || opts.RawChecker == nil {
		return nil, fmt.Errorf("verify-url: extractor and raw checker are required")
	}
	if opts.Config == nil {
		opts.Config = LoadConfig()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	scoped := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     opts.Config,
		extractor:  opts.Extractor,
		rawChecker: opts.RawChecker,
		enricher:   opts.Enricher,
		logger:     scoped,
		errHandler: stderrors.NewErrorHandler(scoped),
	}, nil
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
	return h.VerifyURL(ctx, input.URL)
}

// VerifyURL extracts product data from rawURL. Only a not_parsed extraction
// that carries raw page text is verified, through /check-raw; every other
// status, success included, is an extraction failure and no verification
// call is made.
func (h *Handler) VerifyURL(ctx context.Context, rawURL string) (*Output, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !validation.ValidateURL(rawURL) {
		return nil, stderrors.NewInvalidInputError(InvalidURLMessage)
	}

	extraction, err := h.extractor.ExtractFromURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	log := h.logger.WithFields(map[string]interface{}{"extractStatus": string(extraction.Status)})

	if extraction.Status == models.ExtractStatusNotParsed && extraction.RawResponse != "" {
		return h.verifyRawText(ctx, log, extraction)
	}

	details := extraction.Message
	if details == "" {
		details = fmt.Sprintf("extraction status %q", extraction.Status)
	}
	log.Warn("url extraction unusable", map[string]interface{}{"message": extraction.Message})
	return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, stderrors.NewExtractionFailedError(details))
}

func (h *Handler) verifyRawText(ctx context.Context, log logger.Logger, extraction *models.ExtractURLResult) (*Output, error) {
	result, err := h.rawChecker.CheckRawText(ctx, extraction.RawResponse)
	if err != nil {
		return nil, err
	}

	// Scraped text has no separate ingredient list.
	if h.enricher != nil {
		if alts := h.enricher.Suggest(ctx, extraction.RawResponse, ""); alts != nil {
			result.Alternatives = alts
		}
	}

	log.Info("url verified from raw text", map[string]interface{}{
		"alternatives": len(result.Alternatives),
	})
	return &Output{Result: *result, Status: extraction.Status}, nil
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
		"alternatives": len(output.Result.Alternatives),
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := stderrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
