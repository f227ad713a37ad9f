// Package metrics exposes prometheus collectors for the aggregation layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts read-through lookups by domain and result (hit, miss)
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenomics",
		Name:      "cache_lookups_total",
		Help:      "Read-through cache lookups by domain and result.",
	}, []string{"domain", "result"})

	// UpstreamCalls counts upstream fetches by domain and outcome (success, failure)
	UpstreamCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenomics",
		Name:      "upstream_calls_total",
		Help:      "Upstream fetches by domain and outcome.",
	}, []string{"domain", "outcome"})

	// UpstreamLatency observes upstream fetch durations by domain
	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tokenomics",
		Name:      "upstream_duration_seconds",
		Help:      "Upstream fetch latency by domain.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"domain"})

	// DegradedResponses counts responses served from stale data or fallbacks
	DegradedResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenomics",
		Name:      "degraded_responses_total",
		Help:      "Responses served from stale cache, snapshots or static fallbacks.",
	}, []string{"domain", "source"})
)

func init() {
	prometheus.MustRegister(CacheLookups, UpstreamCalls, UpstreamLatency, DegradedResponses)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
