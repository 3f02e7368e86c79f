package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsExportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "export_products_total",
		Help: "Total number of products exported to the feed",
	})

	ProductsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "export_products_failed_total",
		Help: "Total number of products skipped with errors",
	}, []string{"reason"})

	ProductsExcludedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "export_products_excluded_total",
		Help: "Total number of products excluded by cross-selling categories",
	})

	ExportRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "export_runs_total",
		Help: "Total number of export runs",
	}, []string{"outcome"})

	ExportPageLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "export_page_latency_seconds",
		Help:    "Latency of processing one page of products",
		Buckets: prometheus.DefBuckets,
	})

	WarmupSweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynamic_group_warmup_sweeps_total",
		Help: "Total number of completed dynamic group warm-up sweeps",
	})

	WarmupSweepLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dynamic_group_warmup_latency_seconds",
		Help:    "Latency of dynamic group warm-up sweeps",
		Buckets: prometheus.DefBuckets,
	})

	CacheErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Total number of cache backend errors",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
