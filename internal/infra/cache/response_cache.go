package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"content-harvester/internal/domain/entity"
	"content-harvester/internal/observability/metrics"
)

// Default response TTLs by source type. API responses change often, feeds
// faster still, scraped pages slowest.
const (
	DefaultAPITTL    = 12 * time.Hour
	DefaultFeedTTL   = 6 * time.Hour
	DefaultScrapeTTL = 24 * time.Hour
)

// ResponseCache stores fetched source materials keyed by source type and
// identifier, so unchanged provider data is not re-fetched.
//
// Fail-open contract: backend errors on Get read as misses and backend
// errors on Set are swallowed. The cache can degrade ingestion latency but
// never its availability.
type ResponseCache struct {
	store     Store
	namespace string
}

// NewResponseCache creates a response cache over the given store.
// The namespace prefixes every key so multiple deployments can share a
// backend.
func NewResponseCache(store Store, namespace string) *ResponseCache {
	return &ResponseCache{store: store, namespace: namespace}
}

// Key builds the storage key for a source type and cache identifier.
// Layout: {namespace}:source:{type}:{sha256(identifier)}.
func (c *ResponseCache) Key(sourceType entity.SourceType, identifier string) string {
	return fmt.Sprintf("%s:source:%s:%s", c.namespace, sourceType, hashKey(identifier))
}

// Get returns cached materials for the identifier, or (nil, false) on miss.
// Any backend or decode error is treated as a miss.
func (c *ResponseCache) Get(ctx context.Context, sourceType entity.SourceType, identifier string) ([]entity.SourceMaterial, bool) {
	key := c.Key(sourceType, identifier)

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get failed, treating as miss",
			slog.String("key", key),
			slog.Any("error", err))
		metrics.RecordCacheMiss(string(sourceType))
		return nil, false
	}
	if !found {
		metrics.RecordCacheMiss(string(sourceType))
		return nil, false
	}

	var materials []entity.SourceMaterial
	if err := json.Unmarshal(data, &materials); err != nil {
		slog.Warn("cache entry corrupt, treating as miss",
			slog.String("key", key),
			slog.Any("error", err))
		metrics.RecordCacheMiss(string(sourceType))
		return nil, false
	}

	metrics.RecordCacheHit(string(sourceType))
	return materials, true
}

// Set stores materials for the identifier. A non-positive ttl selects the
// default for the source type. Failures are logged and swallowed.
func (c *ResponseCache) Set(ctx context.Context, sourceType entity.SourceType, identifier string, materials []entity.SourceMaterial, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL(sourceType)
	}

	data, err := json.Marshal(materials)
	if err != nil {
		slog.Warn("cache set skipped, encode failed", slog.Any("error", err))
		return
	}

	key := c.Key(sourceType, identifier)
	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		slog.Warn("cache set failed, ignoring",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// DefaultTTL returns the default response TTL for a source type.
func DefaultTTL(sourceType entity.SourceType) time.Duration {
	switch sourceType {
	case entity.SourceTypeAPI:
		return DefaultAPITTL
	case entity.SourceTypeScrape:
		return DefaultScrapeTTL
	default:
		return DefaultFeedTTL
	}
}
