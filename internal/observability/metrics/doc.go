// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Response cache metrics (hits, misses)
//   - Source fetch metrics (duration, outcomes, retries)
//   - Circuit breaker rejections
//   - Ingestion summary metrics (fetched, deduplicated, delivered)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint of the worker's metrics server.
//
// Example usage:
//
//	import "content-harvester/internal/observability/metrics"
//
//	func fetchSource(provider string) {
//	    start := time.Now()
//	    // ... fetch ...
//	    metrics.RecordSourceFetch("feed", provider, true, time.Since(start))
//	}
package metrics
