// internal/workers/catalog/list-products/handler.go
package listproducts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"claimcheck/internal/common/database"
	stderrors "claimcheck/internal/common/errors"
	backendhttp "claimcheck/internal/common/http"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "list-products"
)

var (
	ErrCatalogFailed = errors.New("CATALOG_FAILED")
)

// Cache result labels.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

type Backend interface {
	Get(ctx context.Context, endpoint string) ([]byte, error)
}

// Cache stores the decoded listing. *database.RedisClient satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Handler struct {
	config     *Config
	backend    Backend
	cache      Cache
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

// NewHandler builds the catalog handler. A nil cache disables caching.
func NewHandler(config *Config, backend Backend, cache Cache, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		backend:    backend,
		cache:      cache,
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
	if job.Variables != "" {
		if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
			h.failJob(client, job, stderrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
			return
		}
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
	if !input.Refresh {
		if products, ok := h.cached(ctx); ok {
			return &Output{Products: products, Cached: true}, nil
		}
	}

	products, err := h.fetch(ctx)
	if err != nil {
		return nil, err
	}
	h.store(ctx, products)
	return &Output{Products: products}, nil
}

// ListProducts returns the catalog, served from cache when fresh.
func (h *Handler) ListProducts(ctx context.Context) ([]models.Product, error) {
	out, err := h.Execute(ctx, &Input{})
	if err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (h *Handler) cached(ctx context.Context) ([]models.Product, bool) {
	if h.cache == nil {
		return nil, false
	}

	var products []models.Product
	err := h.cache.GetJSON(ctx, h.config.CacheKey, &products)
	switch {
	case err == nil:
		metrics.CatalogCache.WithLabelValues(cacheHit).Inc()
		return products, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.CatalogCache.WithLabelValues(cacheMiss).Inc()
	default:
		metrics.CatalogCache.WithLabelValues(cacheError).Inc()
		h.logger.Warn("catalog cache read failed", map[string]interface{}{
			"key":   h.config.CacheKey,
			"error": err.Error(),
		})
	}
	return nil, false
}

func (h *Handler) store(ctx context.Context, products []models.Product) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetJSON(ctx, h.config.CacheKey, products, h.config.CacheTTL); err != nil {
		metrics.CatalogCache.WithLabelValues(cacheError).Inc()
		h.logger.Warn("catalog cache write failed", map[string]interface{}{
			"key":   h.config.CacheKey,
			"error": err.Error(),
		})
	}
}

func (h *Handler) fetch(ctx context.Context) ([]models.Product, error) {
	body, err := h.backend.Get(ctx, h.config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFailed, err)
	}

	var resp models.CatalogResponse
	if err := backendhttp.DecodeJSON(h.config.Endpoint, body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFailed, err)
	}

	products := resp.Data.Products
	if products == nil {
		products = []models.Product{}
	}
	h.logger.Info("catalog fetched", map[string]interface{}{
		"products": len(products),
	})
	return products, nil
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
