// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdlvis_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rdlvis_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdlvis_http_rate_limited_total",
		Help: "Total number of requests rejected by the per-IP rate limiter.",
	})

	// QueryDuration is labelled by operation: root, info, children,
	// subtree, parents, hierarchy, search.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rdlvis_query_seconds",
		Help:    "Time spent answering a graph query.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation"})

	QueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdlvis_query_errors_total",
		Help: "Total number of graph queries that returned an error, by reason.",
	}, []string{"operation", "reason"})

	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdlvis_reloads_total",
		Help: "Total number of snapshot reloads, by result.",
	}, []string{"result"})

	ReloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rdlvis_reload_seconds",
		Help:    "Time spent loading a snapshot into memory.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	StoreTriples = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rdlvis_store_triples",
		Help: "Number of triples in the loaded snapshot.",
	})

	StoreSubjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rdlvis_store_subjects",
		Help: "Number of distinct subjects in the loaded snapshot.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdlvis_watcher_events_total",
		Help: "Total number of history database change events received by the watcher.",
	})

	FetchRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdlvis_fetch_rows_total",
		Help: "Total number of SPARQL result rows processed during fetch, by result.",
	}, []string{"result"})
)
