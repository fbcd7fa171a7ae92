// Package worker holds the operational shell of the ingestion worker:
// environment-driven configuration, the health check server, and the
// worker's Prometheus metrics.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"content-harvester/internal/pkg/config"
)

// WorkerConfig controls the ingestion worker's schedule and runtime limits.
// All fields have defaults; LoadConfigFromEnv never fails, it falls back
// field by field and records the fallbacks in metrics.
type WorkerConfig struct {
	// CronSchedule is the five-field cron expression for ingestion runs.
	// Default: "0 */6 * * *" (every six hours).
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC".
	Timezone string

	// IngestTimeout is the maximum duration for one channel's ingestion
	// run. Default: 10 minutes.
	IngestTimeout time.Duration

	// FetchParallelism bounds concurrent source fetches per ingestion
	// run. Range 1-64. Default: 8.
	FetchParallelism int

	// HealthPort is the port for the health check HTTP server.
	// Range 1024-65535. Default: 9091.
	HealthPort int

	// ChannelsPath is the path to the channel roster YAML file.
	// Default: "configs/channels.yaml".
	ChannelsPath string

	// CachePath is the path to the bbolt cache database file.
	// Default: "data/harvester-cache.db".
	CachePath string

	// DenyPrivateIPs blocks fetches that resolve to loopback or private
	// addresses. Default: true; disable only for local development.
	DenyPrivateIPs bool
}

// DefaultConfig returns a WorkerConfig with production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:     "0 */6 * * *",
		Timezone:         "UTC",
		IngestTimeout:    10 * time.Minute,
		FetchParallelism: 8,
		HealthPort:       9091,
		ChannelsPath:     "configs/channels.yaml",
		CachePath:        "data/harvester-cache.db",
		DenyPrivateIPs:   true,
	}
}

// Validate checks every field and returns an aggregated error when any
// field is out of range.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.IngestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("ingest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.FetchParallelism, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("fetch parallelism: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if c.ChannelsPath == "" {
		errs = append(errs, fmt.Errorf("channels path: cannot be empty"))
	}
	if c.CachePath == "" {
		errs = append(errs, fmt.Errorf("cache path: cannot be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with per-field validation and fallback to defaults. It never
// returns an invalid configuration: each bad value is replaced by its
// default, logged, and counted in the worker's config metrics.
//
// Environment variables:
//   - CRON_SCHEDULE: five-field cron expression
//   - WORKER_TIMEZONE: IANA timezone name
//   - INGEST_TIMEOUT: Go duration, 1m-2h
//   - FETCH_PARALLELISM: integer 1-64
//   - WORKER_HEALTH_PORT: integer 1024-65535
//   - CHANNELS_CONFIG: path to channels.yaml
//   - CACHE_PATH: path to the bbolt database file
//   - DENY_PRIVATE_IPS: boolean
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	schedule := config.LoadEnvString("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	if schedule.FallbackApplied {
		warn("cron_schedule", schedule.Warnings)
	}

	timezone := config.LoadEnvString("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	if timezone.FallbackApplied {
		warn("timezone", timezone.Warnings)
	}

	timeout := config.LoadEnvDuration("INGEST_TIMEOUT", cfg.IngestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 2*time.Hour)
	})
	cfg.IngestTimeout = timeout.Value
	if timeout.FallbackApplied {
		warn("ingest_timeout", timeout.Warnings)
	}

	parallelism := config.LoadEnvInt("FETCH_PARALLELISM", cfg.FetchParallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})
	cfg.FetchParallelism = parallelism.Value
	if parallelism.FallbackApplied {
		warn("fetch_parallelism", parallelism.Warnings)
	}

	healthPort := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = healthPort.Value
	if healthPort.FallbackApplied {
		warn("health_port", healthPort.Warnings)
	}

	channelsPath := config.LoadEnvString("CHANNELS_CONFIG", cfg.ChannelsPath, nil)
	cfg.ChannelsPath = channelsPath.Value

	cachePath := config.LoadEnvString("CACHE_PATH", cfg.CachePath, nil)
	cfg.CachePath = cachePath.Value

	denyPrivate := config.LoadEnvBool("DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	cfg.DenyPrivateIPs = denyPrivate.Value
	if denyPrivate.FallbackApplied {
		warn("deny_private_ips", denyPrivate.Warnings)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg
}
