package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	HTTPRateLimited     prometheus.Counter

	// Upstream geolocation API
	LookupsTotal     *prometheus.CounterVec
	LookupDuration   *prometheus.HistogramVec
	LookupsInFlight  prometheus.Gauge
	LookupsDiscarded prometheus.Counter

	// History store
	HistoryOpsTotal   *prometheus.CounterVec
	HistoryOpDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_lookups_total",
				Help: "Total number of geolocation lookups",
			},
			[]string{"kind", "result"}, // kind: query|self, result: success|failure|invalid
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_lookup_duration_seconds",
				Help:    "Geolocation API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		LookupsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_lookups_in_flight",
				Help: "Number of geolocation lookups currently waiting on the API",
			},
		),
		LookupsDiscarded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_lookups_discarded_total",
				Help: "Responses dropped because a newer lookup had been issued",
			},
		),

		HistoryOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "history_operations_total",
				Help: "Total number of history store operations",
			},
			[]string{"backend", "operation", "status"},
		),
		HistoryOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "history_operation_duration_seconds",
				Help:    "History store latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),
	}
}
