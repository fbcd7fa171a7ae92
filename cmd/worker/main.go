package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"content-harvester/internal/config"
	"content-harvester/internal/infra/cache"
	"content-harvester/internal/infra/provider"
	workerPkg "content-harvester/internal/infra/worker"
	"content-harvester/internal/observability/logging"
	"content-harvester/internal/resilience/circuitbreaker"
	"content-harvester/internal/resilience/ratelimit"
	"content-harvester/internal/usecase/ingest"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("ingest_timeout", workerConfig.IngestTimeout),
		slog.Int("fetch_parallelism", workerConfig.FetchParallelism),
		slog.Int("health_port", workerConfig.HealthPort))

	// The channel roster is required; there is nothing to do without it.
	channelsConfig, err := config.LoadChannelsConfig(workerConfig.ChannelsPath)
	if err != nil {
		logger.Error("failed to load channels config",
			slog.String("path", workerConfig.ChannelsPath),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("channel roster loaded",
		slog.String("namespace", channelsConfig.Namespace),
		slog.Int("channels", len(channelsConfig.Channels)))

	store, err := cache.OpenBoltStore(workerConfig.CachePath)
	if err != nil {
		logger.Error("failed to open cache store",
			slog.String("path", workerConfig.CachePath),
			slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close cache store", slog.Any("error", err))
		}
	}()

	svc := buildIngestService(store, channelsConfig, workerConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	runCronWorker(ctx, logger, svc, store, channelsConfig, workerConfig, workerMetrics, healthServer)
}

// buildIngestService wires the orchestrator from the channel roster's
// shared settings.
func buildIngestService(store *cache.BoltStore, channelsConfig *config.ChannelsConfig, workerConfig *workerPkg.WorkerConfig) *ingest.Service {
	namespace := channelsConfig.Namespace

	dedupWindow := channelsConfig.DedupWindow.Std()
	if dedupWindow == 0 {
		dedupWindow = cache.DefaultDedupWindow
	}

	defaultRPM := channelsConfig.RateLimits.DefaultRPM
	if defaultRPM == 0 {
		defaultRPM = ratelimit.DefaultRequestsPerMinute
	}

	return ingest.NewService(
		provider.NewDefaultFetchers(workerConfig.DenyPrivateIPs),
		cache.NewResponseCache(store, namespace),
		cache.NewDedupIndex(store, namespace, dedupWindow),
		circuitbreaker.NewRegistry(channelsConfig.CircuitBreaker.FailureThreshold, channelsConfig.CircuitBreaker.ResetTimeout.Std()),
		ratelimit.NewRegistry(defaultRPM, channelsConfig.RateLimits.Providers),
		ingest.Config{Parallelism: workerConfig.FetchParallelism},
	)
}

// runCronWorker schedules ingestion runs and blocks until shutdown.
func runCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	svc *ingest.Service,
	store *cache.BoltStore,
	channelsConfig *config.ChannelsConfig,
	workerConfig *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(workerConfig.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", workerConfig.Timezone),
			slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(workerConfig.CronSchedule, func() {
		runIngestJob(ctx, logger, svc, channelsConfig, workerConfig, metrics)
	}); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}

	// Expired cache entries are only dropped lazily on read; sweep hourly
	// so the bolt file does not grow without bound.
	if _, err := c.AddFunc("@hourly", func() {
		swept, err := store.Sweep(ctx)
		if err != nil {
			logger.Warn("cache sweep failed", slog.Any("error", err))
			return
		}
		logger.Info("cache sweep completed", slog.Int("removed", swept))
	}); err != nil {
		logger.Error("failed to add sweep job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone))

	<-ctx.Done()

	healthServer.SetReady(false)
	logger.Info("worker shutting down, waiting for running jobs")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runIngestJob runs one scheduled ingestion pass over every channel in
// the roster. Channels are processed sequentially; sources within a
// channel fan out inside the ingest service.
func runIngestJob(
	ctx context.Context,
	logger *slog.Logger,
	svc *ingest.Service,
	channelsConfig *config.ChannelsConfig,
	workerConfig *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
) {
	jobStart := time.Now()
	logger.Info("ingestion job started", slog.Int("channels", len(channelsConfig.Channels)))

	processed := 0
	failed := 0
	for _, channel := range channelsConfig.Channels {
		chLogger := logging.WithChannel(logger, channel.ID)
		chCtx, cancel := context.WithTimeout(ctx, workerConfig.IngestTimeout)

		materials, err := svc.Ingest(chCtx, channel.ID, channel.Sources)
		cancel()

		switch {
		case errors.Is(err, ingest.ErrNoData):
			failed++
			chLogger.Warn("channel produced no data", slog.Any("error", err))
		case err != nil:
			failed++
			chLogger.Error("channel ingestion failed", slog.Any("error", err))
		default:
			processed++
			stats := svc.Stats()
			chLogger.Info("channel ingested",
				slog.Int("materials", len(materials)),
				slog.Int("sources_failed", stats.Failed),
				slog.Int("cache_hits", stats.CacheHits),
				slog.Int("deduplicated", stats.Deduplicated),
				slog.Duration("duration", stats.Duration))
		}

		if ctx.Err() != nil {
			logger.Warn("ingestion job interrupted by shutdown")
			break
		}
	}

	duration := time.Since(jobStart)
	metrics.RecordJobDuration(duration.Seconds())
	metrics.RecordChannelsProcessed(processed)

	if failed > 0 && processed == 0 {
		metrics.RecordJobRun("failure")
		metrics.RecordFailure()
		logger.Error("ingestion job failed for all channels",
			slog.Int("failed", failed),
			slog.Duration("duration", duration))
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordSuccess()
	logger.Info("ingestion job completed",
		slog.Int("processed", processed),
		slog.Int("failed", failed),
		slog.Duration("duration", duration))
}
