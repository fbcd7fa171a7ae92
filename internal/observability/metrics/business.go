package metrics

import "time"

// RecordCacheHit records a response cache hit for a source type.
func RecordCacheHit(sourceType string) {
	CacheOperationsTotal.WithLabelValues(sourceType, "hit").Inc()
}

// RecordCacheMiss records a response cache miss for a source type.
// Backend failures count as misses; the cache is fail-open.
func RecordCacheMiss(sourceType string) {
	CacheOperationsTotal.WithLabelValues(sourceType, "miss").Inc()
}

// RecordSourceFetch records the outcome and duration of a provider fetch,
// including its retries.
func RecordSourceFetch(sourceType, provider string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	SourceFetchesTotal.WithLabelValues(sourceType, provider, result).Inc()
	SourceFetchDuration.WithLabelValues(sourceType).Observe(duration.Seconds())
}

// RecordCircuitOpenRejection records a fetch rejected by an open circuit.
func RecordCircuitOpenRejection(provider string) {
	CircuitOpenRejectionsTotal.WithLabelValues(provider).Inc()
}

// RecordCircuitStateChange records a breaker state transition.
func RecordCircuitStateChange(provider, from, to string) {
	CircuitStateChangesTotal.WithLabelValues(provider, from, to).Inc()
}

// RecordIngestion records the outcome and duration of a whole ingestion call.
func RecordIngestion(channel string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	IngestionsTotal.WithLabelValues(channel, result).Inc()
	IngestionDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordIngestionSummary records the material disposition counts for an
// ingestion call: items fetched from providers, items served from cache,
// items suppressed as duplicates, and items delivered downstream.
func RecordIngestionSummary(channel string, fetched, cached, deduplicated, delivered int) {
	IngestionMaterialsTotal.WithLabelValues(channel, "fetched").Add(float64(fetched))
	IngestionMaterialsTotal.WithLabelValues(channel, "cached").Add(float64(cached))
	IngestionMaterialsTotal.WithLabelValues(channel, "deduplicated").Add(float64(deduplicated))
	IngestionMaterialsTotal.WithLabelValues(channel, "delivered").Add(float64(delivered))
}
