// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posmatch_recommendations_total",
			Help: "Total number of resolved recommendation queries by source tier",
		},
		[]string{"tier"},
	)

	ClassifierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posmatch_classifier_failures_total",
			Help: "Total number of unusable classifier responses by reason",
		},
		[]string{"reason"},
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "posmatch_resolve_duration_seconds",
			Help:    "Duration of recommendation resolution in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posmatch_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

var StaleResultsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "posmatch_session_stale_results_total",
		Help: "Total number of session results discarded because a newer query superseded them",
	},
)

var CacheEntries = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "posmatch_cache_entries",
		Help: "Number of entries held by the in-memory classification cache after the last sweep",
	},
)
