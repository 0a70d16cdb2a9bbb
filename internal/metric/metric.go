package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are package-level so the relay, job runner, worker and HTTP
// middleware can share them without wiring a registry through every
// constructor. Everything registers on the default gatherer, which the ops
// HTTP service exposes on /metrics.
var (
	HTTPInflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_http_inflight_requests",
		Help: "Number of HTTP requests currently being served.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_http_requests_total",
		Help: "Total HTTP requests by method and path.",
	}, []string{"method", "path"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockroom_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	OutboxRelayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_outbox_relayed_total",
		Help: "Outbox messages relayed to the broker by topic and status.",
	}, []string{"topic", "status"})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_background_jobs_processed_total",
		Help: "Background jobs executed by type and status.",
	}, []string{"job_type", "status"})

	LowStockProductsFound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_low_stock_products",
		Help: "Number of low-stock products found by the last reconciliation sweep.",
	})
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)
