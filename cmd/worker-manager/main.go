// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"claimcheck/internal/app"
	"claimcheck/internal/common/camunda"
	"claimcheck/internal/common/config"
	"claimcheck/internal/common/database"
	backendhttp "claimcheck/internal/common/http"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/observability"
	"claimcheck/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := cfg.RequireBroker(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Redis (optional catalog cache) ---
	cache := connectRedis(ctx, cfg, log)

	services, err := app.New(cfg, cache, log, backendhttp.WithTracerProvider(obs.TracerProvider()))
	if err != nil {
		zapLog.Fatal("service wiring failed", zap.Error(err))
	}

	reg, err := registry.Load()
	if err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	workers := startWorkers(zeebe, cfg, reg, services.JobHandlers(), obs, log)
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	checks := map[string]func(context.Context) error{"zeebe": zeebe.HealthCheck}
	if cache != nil {
		checks["redis"] = cache.Ping
	}
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newHealthMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("health/metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health/metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutdown signal received, stopping workers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health server shutdown", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("closing zeebe client", zap.Error(err))
	}
	if cache != nil {
		cache.Close()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown", zap.Error(err))
	}

	zapLog.Info("worker manager stopped")
}

// connectRedis returns nil when no cache is configured or it cannot be
// reached; the catalog then goes straight to the backend.
func connectRedis(ctx context.Context, cfg *config.Config, log logger.Logger) *database.RedisClient {
	if !cfg.Database.Redis.Enabled() {
		log.Info("redis not configured, catalog cache disabled", nil)
		return nil
	}

	client, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Warn("redis client init failed, catalog cache disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}

	retry := &camunda.RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 8 * time.Second}
	if err := camunda.Retry(ctx, retry, "redis ping", log, client.Ping); err != nil {
		log.Warn("redis unreachable, catalog cache disabled", map[string]interface{}{"error": err.Error()})
		client.Close()
		return nil
	}
	log.Info("redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
	return client
}

func startWorkers(
	zeebe *camunda.Client,
	cfg *config.Config,
	reg *registry.ActivityRegistry,
	handlers map[string]camunda.JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) []*camunda.CamundaWorker {
	var started []*camunda.CamundaWorker

	for _, activity := range reg.Activities {
		handler, ok := handlers[activity.TaskType]
		if !ok {
			log.Warn("no handler for registered activity", map[string]interface{}{"taskType": activity.TaskType})
			continue
		}
		if !config.IsWorkerEnabled(cfg, activity.TaskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": activity.TaskType})
			continue
		}

		wcfg := config.GetWorkerConfig(cfg, activity.TaskType)
		lease, _ := activity.TimeoutDuration()

		started = append(started, camunda.NewWorker(
			zeebe.GetClient(),
			camunda.WorkerOptions{
				TaskType:      activity.TaskType,
				MaxJobsActive: wcfg.MaxJobsActive,
				Timeout:       wcfg.TimeoutDuration(lease),
			},
			handler,
			log,
			instrument(obs),
		))
	}
	return started
}

// instrument records a span and job metrics around every job.
func instrument(obs *observability.Observability) camunda.Middleware {
	return func(taskType string, next camunda.JobHandler) camunda.JobHandler {
		return camunda.HandlerFunc(func(client worker.JobClient, job entities.Job) {
			ctx, span := obs.StartSpan(context.Background(), taskType)
			defer span.End()

			start := time.Now()
			next.Handle(client, job)
			obs.RecordJobProcessed(ctx, taskType, "handled")
			obs.RecordJobDuration(ctx, taskType, time.Since(start))
		})
	}
}
