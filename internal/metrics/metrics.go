// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfsearch_provider_requests_total",
			Help: "Provider calls by outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "success", "timeout", "transportFailure", "upstreamRejected"
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfsearch_provider_duration_seconds",
			Help:    "Duration of provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shelfsearch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfsearch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfsearch_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfsearch_cache_writes_total",
			Help: "Response cache writes by result",
		},
		[]string{"result"}, // "stored", "skipped", "error"
	)

	// Affiliate metrics
	AffiliateLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfsearch_affiliate_links_total",
			Help: "Affiliate link attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "failed"
	)

	// Search metrics
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfsearch_search_duration_seconds",
			Help:    "End-to-end search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cache"}, // "hit", "miss"
	)
)

// RecordProviderCall records one provider call.
func RecordProviderCall(provider, outcome string, elapsed time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
