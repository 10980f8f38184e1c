package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once guards registration; the default registry panics on duplicates.
	once sync.Once

	// HTTPRequestsTotal counts finished inbound requests. route is the
	// registered pattern, never the raw path, to keep label cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// UpstreamRequestsTotal counts outbound provider fetches.
	//
	// labels:
	// - provider: googlephotos / unsplash
	// - step: metadata / binary / tracking
	// - outcome: ok / rejected / unavailable / timeout
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_request_total",
			Help: "Outbound provider requests by step and outcome.",
		},
		[]string{"provider", "step", "outcome"},
	)

	UpstreamRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Outbound provider request latency, headers through full body.",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "step"},
	)

	UpstreamBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_bytes_total",
			Help: "Bytes relayed from providers to callers.",
		},
		[]string{"provider"},
	)

	// TrackingPingsDropped counts tracking pings discarded because the
	// dispatcher buffer was full or already closed.
	TrackingPingsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_pings_dropped_total",
			Help: "Best-effort tracking pings dropped before dispatch.",
		},
	)

	PlaceholderServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "placeholder_served_total",
			Help: "Placeholder pixels served in place of a provider asset.",
		},
	)

	SessionStoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_operations_total",
			Help: "Session store calls by backend, operation and result.",
		},
		[]string{"backend", "op", "result"},
	)
)

// Init registers every collector exactly once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			UpstreamRequestsTotal,
			UpstreamRequestDurationSeconds,
			UpstreamBytesTotal,
			TrackingPingsDropped,
			PlaceholderServedTotal,
			SessionStoreOperations,
		)
	})
}
