// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics track response cache effectiveness
var (
	// CacheOperationsTotal counts cache lookups by source type and result
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_operations_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"source_type", "result"},
	)
)

// Fetch metrics track provider fetch patterns and performance
var (
	// SourceFetchesTotal counts provider fetches by type, provider, and outcome
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Total number of provider fetch operations",
		},
		[]string{"source_type", "provider", "result"},
	)

	// SourceFetchDuration measures provider fetch duration in seconds
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Provider fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source_type"},
	)

	// CircuitOpenRejectionsTotal counts fetches rejected by an open circuit
	CircuitOpenRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_open_rejections_total",
			Help: "Total number of fetches rejected because a provider circuit was open",
		},
		[]string{"provider"},
	)

	// CircuitStateChangesTotal counts breaker state transitions by provider
	CircuitStateChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_state_changes_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"provider", "from", "to"},
	)
)

// Ingestion metrics track end-to-end ingestion outcomes
var (
	// IngestionsTotal counts ingestion calls by channel and result
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestions_total",
			Help: "Total number of ingestion calls",
		},
		[]string{"channel", "result"},
	)

	// IngestionDuration measures whole-ingestion duration in seconds
	IngestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_duration_seconds",
			Help:    "Whole ingestion call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"channel"},
	)

	// IngestionMaterialsTotal counts materials by channel and disposition
	// (fetched, cached, deduplicated, delivered)
	IngestionMaterialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_materials_total",
			Help: "Total number of materials by ingestion disposition",
		},
		[]string{"channel", "disposition"},
	)
)
