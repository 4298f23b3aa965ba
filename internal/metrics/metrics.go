// Package metrics holds Prometheus instruments used across the explainer
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveTenantPools = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenant_pools_active",
			Help: "Number of per-tenant database pools currently held open.",
		})

	TenantPoolLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_pool_load_total",
			Help: "Cumulative number of tenant database pools opened.",
		})

	TenantPoolLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_pool_load_errors_total",
			Help: "Cumulative number of tenant database pool load errors.",
		})

	TenantPoolEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_pool_evict_total",
			Help: "Cumulative number of tenant database pools evicted from the cache.",
		})

	ExplainRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explain_requests_total",
			Help: "Requests served per route.",
		}, []string{"route"})

	ExplainRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explain_request_duration_seconds",
			Help:    "End-to-end request duration per route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explain_pipeline_stage_duration_seconds",
			Help:    "Duration of each orchestrator stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"})

	SchemaCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schema_cache_hits_total",
			Help: "Schema cache lookups served from cache.",
		})

	SchemaCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schema_cache_misses_total",
			Help: "Schema cache lookups that required a rebuild.",
		})

	TraceCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trace_cache_hits_total",
			Help: "Trace cache lookups served from cache.",
		})

	TraceCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trace_cache_misses_total",
			Help: "Trace cache lookups that required running the filter chain.",
		})

	GenerationFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_fallback_total",
			Help: "Times the deterministic fallback paraphrase was used instead of the model.",
		}, []string{"reason"})

	RetrievalFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_failures_total",
			Help: "Semantic-search retrieval calls that failed or timed out.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveTenantPools,
		TenantPoolLoadTotal,
		TenantPoolLoadErrorsTotal,
		TenantPoolEvictTotal,
		ExplainRequestsTotal,
		ExplainRequestDuration,
		PipelineStageDuration,
		SchemaCacheHitsTotal,
		SchemaCacheMissesTotal,
		TraceCacheHitsTotal,
		TraceCacheMissesTotal,
		GenerationFallbackTotal,
		RetrievalFailuresTotal,
	)
}
