package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPC metrics
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loom_rpc_requests_total",
			Help: "Total number of RPC requests by method and status",
		},
		[]string{"method", "status"},
	)

	RPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loom_rpc_request_duration_seconds",
			Help:    "RPC request duration in seconds by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Realtime channel metrics
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "loom_ws_connections_active",
			Help: "Number of live realtime connections",
		},
	)

	RoomsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "loom_ws_rooms_active",
			Help: "Number of rooms with at least one subscriber",
		},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loom_events_published_total",
			Help: "Total number of events published by type",
		},
		[]string{"type"},
	)

	// Credential metrics
	APIKeyValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loom_apikey_validations_total",
			Help: "Total number of API key hash lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RPCRequestsTotal,
		RPCRequestDuration,
		ConnectionsActive,
		RoomsActive,
		EventsPublishedTotal,
		APIKeyValidationsTotal,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
