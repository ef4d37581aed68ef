package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Realtime metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections_active",
			Help: "Currently open realtime connections",
		},
	)

	Admissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_admissions_total",
			Help: "Realtime connection attempts by outcome",
		},
		[]string{"result"}, // "admitted", "missing_token", "invalid_token"
	)

	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Relay attempts by outcome",
		},
		[]string{"result"}, // "delivered", "invalid", "store_error"
	)

	PresenceBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_presence_broadcasts_total",
			Help: "Online user list pushes",
		},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_store_latency_seconds",
			Help:    "Message store append latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)
