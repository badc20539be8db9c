// internal/app/services.go
package app

import (
	"fmt"
	"sort"
	"time"

	"claimcheck/internal/common/camunda"
	"claimcheck/internal/common/config"
	"claimcheck/internal/common/database"
	backendhttp "claimcheck/internal/common/http"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/workers/assistant/chat"
	listproducts "claimcheck/internal/workers/catalog/list-products"
	checkhealth "claimcheck/internal/workers/health/check-health"
	checkimage "claimcheck/internal/workers/media/check-image"
	cropimage "claimcheck/internal/workers/media/crop-image"
	checkraw "claimcheck/internal/workers/verification/check-raw"
	extracturl "claimcheck/internal/workers/verification/extract-url"
	suggestalternatives "claimcheck/internal/workers/verification/suggest-alternatives"
	verifymanual "claimcheck/internal/workers/verification/verify-manual"
	verifymedia "claimcheck/internal/workers/verification/verify-media"
	verifyurl "claimcheck/internal/workers/verification/verify-url"
)

// Services holds one handler per operation, wired to a shared backend
// client. Both the worker host and the CLI build their surfaces from it.
type Services struct {
	Backend *backendhttp.Client

	Crop    *cropimage.Handler
	OCR     *checkimage.Handler
	Suggest *suggestalternatives.Handler
	Manual  *verifymanual.Handler
	Raw     *checkraw.Handler
	Extract *extracturl.Handler
	URL     *verifyurl.Handler
	Media   *verifymedia.Handler
	Health  *checkhealth.Handler
	Chat    *chat.Handler
	Catalog *listproducts.Handler
}

// New wires every handler. cache may be nil, in which case the catalog is
// fetched on every call.
func New(cfg *config.Config, cache *database.RedisClient, log logger.Logger, opts ...backendhttp.Option) (*Services, error) {
	opts = append([]backendhttp.Option{backendhttp.WithUserAgent(cfg.API.UserAgent)}, opts...)
	backend := backendhttp.NewClient(cfg.API.BaseURL, cfg.APITimeout(), opts...)

	s := &Services{Backend: backend}

	cropCfg := cropimage.LoadConfig()
	cropCfg.Timeout = workerTimeout(cfg, cropimage.TaskType, cropCfg.Timeout)
	s.Crop = cropimage.NewHandler(cropCfg, backend, log)

	ocrCfg := checkimage.LoadConfig()
	ocrCfg.Timeout = workerTimeout(cfg, checkimage.TaskType, ocrCfg.Timeout)
	s.OCR = checkimage.NewHandler(ocrCfg, backend, log)

	sugCfg := suggestalternatives.LoadConfig()
	sugCfg.Timeout = workerTimeout(cfg, suggestalternatives.TaskType, sugCfg.Timeout)
	s.Suggest = suggestalternatives.NewHandler(sugCfg, backend, log)

	manCfg := verifymanual.LoadConfig()
	manCfg.Timeout = workerTimeout(cfg, verifymanual.TaskType, manCfg.Timeout)
	s.Manual = verifymanual.NewHandler(manCfg, backend, s.Suggest, log)

	rawCfg := checkraw.LoadConfig()
	rawCfg.Timeout = workerTimeout(cfg, checkraw.TaskType, rawCfg.Timeout)
	s.Raw = checkraw.NewHandler(rawCfg, backend, log)

	extCfg := extracturl.LoadConfig()
	extCfg.Timeout = workerTimeout(cfg, extracturl.TaskType, extCfg.Timeout)
	s.Extract = extracturl.NewHandler(extCfg, backend, s.Suggest, log)

	urlCfg := verifyurl.LoadConfig()
	urlCfg.Timeout = workerTimeout(cfg, verifyurl.TaskType, urlCfg.Timeout)
	urlHandler, err := verifyurl.NewHandler(verifyurl.HandlerOptions{
		Config:     urlCfg,
		Extractor:  s.Extract,
		RawChecker: s.Raw,
		Enricher:   s.Suggest,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("wire %s: %w", verifyurl.TaskType, err)
	}
	s.URL = urlHandler

	mediaCfg := verifymedia.LoadConfig()
	mediaCfg.Timeout = workerTimeout(cfg, verifymedia.TaskType, mediaCfg.Timeout)
	s.Media = verifymedia.NewHandler(mediaCfg, s.Crop, s.OCR, s.Manual, log)

	healthCfg := checkhealth.LoadConfig()
	healthCfg.Timeout = workerTimeout(cfg, checkhealth.TaskType, healthCfg.Timeout)
	s.Health = checkhealth.NewHandler(healthCfg, backend, log)

	chatCfg := chat.LoadConfig()
	chatCfg.Timeout = workerTimeout(cfg, chat.TaskType, chatCfg.Timeout)
	s.Chat = chat.NewHandler(chatCfg, backend, log)

	catCfg := listproducts.LoadConfig()
	catCfg.Timeout = workerTimeout(cfg, listproducts.TaskType, catCfg.Timeout)
	catCfg.CacheKey = cfg.Catalog.CacheKey
	catCfg.CacheTTL = cfg.CatalogTTL()
	var catalogCache listproducts.Cache
	if cache != nil {
		catalogCache = cache
	}
	s.Catalog = listproducts.NewHandler(catCfg, backend, catalogCache, log)

	return s, nil
}

// JobHandlers maps each task type to its job handler.
func (s *Services) JobHandlers() map[string]camunda.JobHandler {
	return map[string]camunda.JobHandler{
		cropimage.TaskType:           s.Crop,
		checkimage.TaskType:          s.OCR,
		suggestalternatives.TaskType: s.Suggest,
		verifymanual.TaskType:        s.Manual,
		checkraw.TaskType:            s.Raw,
		extracturl.TaskType:          s.Extract,
		verifyurl.TaskType:           s.URL,
		verifymedia.TaskType:         s.Media,
		checkhealth.TaskType:         s.Health,
		chat.TaskType:                s.Chat,
		listproducts.TaskType:        s.Catalog,
	}
}

// TaskTypes lists the task types in JobHandlers, sorted.
func (s *Services) TaskTypes() []string {
	handlers := s.JobHandlers()
	out := make([]string, 0, len(handlers))
	for tt := range handlers {
		out = append(out, tt)
	}
	sort.Strings(out)
	return out
}

// workerTimeout honours workers.<taskType>.timeout when configured.
func workerTimeout(cfg *config.Config, taskType string, def time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok {
		return w.TimeoutDuration(def)
	}
	return def
}
