// Package ingest orchestrates multi-source content ingestion for a channel.
// It fans out across source descriptors with bounded parallelism, composes
// the resilience layers around each fetch (response cache, circuit breaker,
// retry, rate limiter), merges the per-source results, and filters the
// merged set against the channel's deduplication index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"content-harvester/internal/domain/entity"
	"content-harvester/internal/infra/cache"
	"content-harvester/internal/infra/provider"
	"content-harvester/internal/observability/logging"
	"content-harvester/internal/observability/metrics"
	"content-harvester/internal/observability/tracing"
	"content-harvester/internal/resilience/circuitbreaker"
	"content-harvester/internal/resilience/ratelimit"
	"content-harvester/internal/resilience/retry"
)

// DefaultParallelism bounds concurrent source fetches within one ingestion run.
const DefaultParallelism = 8

// Config holds orchestration settings for the ingest Service.
type Config struct {
	// Parallelism is the maximum number of sources fetched concurrently.
	// Zero or negative falls back to DefaultParallelism.
	Parallelism int

	// RetryConfigs overrides the retry policy per source type. Types
	// without an entry use the per-type defaults from the retry package.
	RetryConfigs map[entity.SourceType]retry.Config
}

// Service orchestrates ingestion runs. All collaborators are injected so
// tests can substitute in-memory stores and stub fetchers.
type Service struct {
	fetchers provider.Fetchers
	cache    *cache.ResponseCache
	dedup    *cache.DedupIndex
	breakers *circuitbreaker.Registry
	limiters *ratelimit.Registry
	config   Config

	statsMu   sync.Mutex
	lastStats IngestStats
}

// NewService creates an ingest Service with the provided collaborators.
func NewService(
	fetchers provider.Fetchers,
	responseCache *cache.ResponseCache,
	dedup *cache.DedupIndex,
	breakers *circuitbreaker.Registry,
	limiters *ratelimit.Registry,
	config Config,
) *Service {
	return &Service{
		fetchers: fetchers,
		cache:    responseCache,
		dedup:    dedup,
		breakers: breakers,
		limiters: limiters,
		config:   config,
	}
}

// IngestStats contains statistics about one ingestion run.
type IngestStats struct {
	Sources      int
	Failed       int
	Fetched      int
	CacheHits    int
	Deduplicated int
	Delivered    int
	Duration     time.Duration
}

// Ingest fetches all sources for a channel and returns the deduplicated
// union of their materials. Individual source failures are tolerated: they
// are logged, counted, and excluded from the merge. ErrNoData is returned
// only when every source produced nothing. When every merged material is a
// known duplicate, the duplicate set is returned rather than nothing.
// Statistics of the run are retrievable afterwards via Stats.
func (s *Service) Ingest(ctx context.Context, channelID string, sources []entity.SourceDescriptor) ([]entity.SourceMaterial, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "ingest.channel")
	defer span.End()
	span.SetAttributes(
		attribute.String("channel.id", channelID),
		attribute.Int("channel.sources", len(sources)),
	)

	logger := logging.WithChannel(logging.FromContext(ctx), channelID)
	start := time.Now()
	stats := &IngestStats{Sources: len(sources)}

	var (
		mu     sync.Mutex
		merged []entity.SourceMaterial
	)

	sem := make(chan struct{}, s.parallelism())
	eg, egCtx := errgroup.WithContext(ctx)

	for _, source := range sources {
		desc := source

		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			materials, fromCache, err := s.fetchSource(egCtx, channelID, desc)
			if err != nil {
				// Cancellation of the whole run is the only failure
				// that stops the other sources. A timed-out fetch also
				// wraps a context error, so the run's own context is
				// the deciding signal, not the error class.
				if egCtx.Err() != nil {
					return err
				}
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				logger.Warn("source fetch failed",
					slog.String("source_type", string(desc.Type)),
					slog.String("provider", desc.Provider),
					slog.String("endpoint", desc.Endpoint),
					slog.Any("error", err))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			merged = append(merged, materials...)
			stats.Fetched += len(materials)
			if fromCache {
				stats.CacheHits++
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		stats.Duration = time.Since(start)
		metrics.RecordIngestion(channelID, false, stats.Duration)
		s.recordStats(stats)
		return nil, err
	}

	if len(merged) == 0 {
		stats.Duration = time.Since(start)
		metrics.RecordIngestion(channelID, false, stats.Duration)
		s.recordStats(stats)
		return nil, fmt.Errorf("%w: channel %q produced nothing from %d sources", ErrNoData, channelID, len(sources))
	}

	delivered := s.deduplicate(ctx, channelID, merged, stats, logger)

	stats.Delivered = len(delivered)
	stats.Duration = time.Since(start)

	metrics.RecordIngestion(channelID, true, stats.Duration)
	metrics.RecordIngestionSummary(channelID, stats.Fetched, stats.CacheHits, stats.Deduplicated, stats.Delivered)

	logger.Info("ingestion completed",
		slog.Int("sources", stats.Sources),
		slog.Int("failed", stats.Failed),
		slog.Int("fetched", stats.Fetched),
		slog.Int("cache_hits", stats.CacheHits),
		slog.Int("deduplicated", stats.Deduplicated),
		slog.Int("delivered", stats.Delivered),
		slog.Duration("duration", stats.Duration),
	)

	s.recordStats(stats)
	return delivered, nil
}

// Stats returns a snapshot of the most recently completed run. The worker
// ingests channels sequentially and reads the snapshot after each call to
// build its job summary.
func (s *Service) Stats() IngestStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.lastStats
}

func (s *Service) recordStats(stats *IngestStats) {
	s.statsMu.Lock()
	s.lastStats = *stats
	s.statsMu.Unlock()
}

// fetchSource resolves one source: response cache first, then the live
// fetch wrapped in the provider's circuit breaker, with retries and rate
// limiting inside the breaker so every attempt counts against it.
func (s *Service) fetchSource(ctx context.Context, channelID string, desc entity.SourceDescriptor) ([]entity.SourceMaterial, bool, error) {
	if err := desc.Validate(); err != nil {
		return nil, false, retry.Permanent(err)
	}

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.source")
	defer span.End()
	span.SetAttributes(
		attribute.String("source.type", string(desc.Type)),
		attribute.String("source.provider", desc.Provider),
	)

	identifier := desc.CacheIdentifier()
	if materials, ok := s.cache.Get(ctx, desc.Type, identifier); ok {
		return materials, true, nil
	}

	fetcher, err := s.fetchers.For(desc.Type)
	if err != nil {
		return nil, false, err
	}

	breaker := s.breakers.Get(desc.Provider)
	retryCfg := s.retryConfig(desc.Type)

	result, err := breaker.Execute(func() (interface{}, error) {
		var materials []entity.SourceMaterial
		retryErr := retry.Do(ctx, retryCfg, desc.Provider, func() error {
			if acqErr := s.limiters.Acquire(ctx, desc.Provider); acqErr != nil {
				return acqErr
			}
			fetchStart := time.Now()
			var fetchErr error
			materials, fetchErr = fetcher.Fetch(ctx, desc, channelID)
			metrics.RecordSourceFetch(string(desc.Type), desc.Provider, fetchErr == nil, time.Since(fetchStart))
			return fetchErr
		})
		if retryErr != nil && ctx.Err() != nil {
			// The run was cancelled, not the provider failing; keep the
			// breaker's failure streak out of it.
			return materials, circuitbreaker.Ignore(retryErr)
		}
		return materials, retryErr
	})
	if err != nil {
		if circuitbreaker.IsOpenError(err) {
			metrics.RecordCircuitOpenRejection(desc.Provider)
		}
		return nil, false, err
	}

	materials := result.([]entity.SourceMaterial)

	// Write-through must survive cancellation of the run itself.
	safeCtx := context.WithoutCancel(ctx)
	s.cache.Set(safeCtx, desc.Type, identifier, materials, cache.DefaultTTL(desc.Type))

	return materials, false, nil
}

// deduplicate filters materials already seen in the channel's dedup window.
// If everything is a duplicate the full set is passed through instead, so a
// quiet period never starves the channel. Delivered materials are marked.
func (s *Service) deduplicate(ctx context.Context, channelID string, merged []entity.SourceMaterial, stats *IngestStats, logger *slog.Logger) []entity.SourceMaterial {
	fresh := make([]entity.SourceMaterial, 0, len(merged))
	for _, m := range merged {
		if s.dedup.Seen(ctx, channelID, m.Content) {
			stats.Deduplicated++
			continue
		}
		fresh = append(fresh, m)
	}

	delivered := fresh
	if len(delivered) == 0 {
		logger.Info("all materials are known duplicates, emitting duplicate set",
			slog.Int("duplicates", len(merged)))
		delivered = merged
	}

	safeCtx := context.WithoutCancel(ctx)
	for _, m := range delivered {
		s.dedup.Mark(safeCtx, channelID, m.Content)
	}

	return delivered
}

func (s *Service) parallelism() int {
	if s.config.Parallelism > 0 {
		return s.config.Parallelism
	}
	return DefaultParallelism
}

func (s *Service) retryConfig(sourceType entity.SourceType) retry.Config {
	if cfg, ok := s.config.RetryConfigs[sourceType]; ok {
		return cfg
	}
	switch sourceType {
	case entity.SourceTypeAPI:
		return retry.APIFetchConfig()
	case entity.SourceTypeFeed:
		return retry.FeedFetchConfig()
	case entity.SourceTypeScrape:
		return retry.WebScraperConfig()
	default:
		return retry.DefaultConfig()
	}
}
