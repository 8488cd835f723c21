// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package metrics holds the Prometheus collectors for Recdash.
//
// Collectors are registered on the default registry at package init and
// exposed by the API at /metrics:
//
//	curl http://localhost:8501/metrics
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeDegraded    = "degraded"
	OutcomeNotFound    = "not_found"
	OutcomeUnknownUser = "unknown_user"
	OutcomeError       = "error"
)

var (
	// Recommendation metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of ranking calls by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of ranking calls in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	RecommendResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of items returned per ranking call",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"strategy"},
	)

	RecommendTrainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_train_duration_seconds",
			Help:    "Duration of algorithm training in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"algorithm"},
	)

	RecommendModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Catalog version the ranking models were trained on",
		},
	)

	// Catalog metrics
	RecommendCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cache_lookups_total",
			Help: "Ranking result cache lookups by strategy and result (hit, miss)",
		},
		[]string{"strategy", "result"},
	)

	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Total number of catalog loads by outcome",
		},
		[]string{"outcome"},
	)

	CatalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Duration of catalog load and normalization in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_rows",
			Help: "Size of the loaded catalog by kind",
		},
		[]string{"kind"}, // "rows", "items", "users", "interactions"
	)

	CatalogMalformedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_malformed_rows_total",
			Help: "Total number of malformed input rows seen across loads",
		},
	)

	CatalogInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_invalidations_total",
			Help: "Total number of catalog cache invalidations by trigger",
		},
		[]string{"trigger"}, // "watch", "api", "manual"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordRecommendation records one ranking call.
func RecordRecommendation(strategy, outcome string, resultSize int, duration time.Duration) {
	RecommendRequestsTotal.WithLabelValues(strategy, outcome).Inc()
	RecommendDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if outcome == OutcomeOK || outcome == OutcomeDegraded {
		RecommendResultSize.WithLabelValues(strategy).Observe(float64(resultSize))
	}
}

// RecordCacheLookup records a ranking result cache lookup.
func RecordCacheLookup(strategy string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	RecommendCacheLookups.WithLabelValues(strategy, result).Inc()
}

// RecordTraining records the training time of one algorithm.
func RecordTraining(algorithm string, duration time.Duration) {
	RecommendTrainDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordCatalogLoad records a catalog load attempt. Sizes are only updated on success.
func RecordCatalogLoad(duration time.Duration, rows, items, users, interactions, malformed int, err error) {
	CatalogLoadDuration.Observe(duration.Seconds())
	if err != nil {
		CatalogLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	CatalogLoadsTotal.WithLabelValues("success").Inc()
	CatalogRows.WithLabelValues("rows").Set(float64(rows))
	CatalogRows.WithLabelValues("items").Set(float64(items))
	CatalogRows.WithLabelValues("users").Set(float64(users))
	CatalogRows.WithLabelValues("interactions").Set(float64(interactions))
	CatalogMalformedRows.Add(float64(malformed))
}

// RecordCatalogInvalidation records a cache drop.
func RecordCatalogInvalidation(trigger string) {
	CatalogInvalidations.WithLabelValues(trigger).Inc()
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
