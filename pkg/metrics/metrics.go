// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ConnectionsActive tracks active WebSocket connections per channel.
	ConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of active WebSocket connections",
		},
		[]string{"channel"},
	)

	// ConnectionsRefused tracks connections refused for missing identity.
	ConnectionsRefused = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_connections_refused_total",
			Help: "WebSocket connections refused at session setup",
		},
		[]string{"channel"},
	)

	// ActionsTotal tracks processed client actions by outcome.
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_actions_total",
			Help: "Total client actions processed",
		},
		[]string{"channel", "action", "status"},
	)

	// ActionDuration tracks action unit-of-work duration.
	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ws_action_duration_seconds",
			Help:    "Action handler unit-of-work duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"channel", "action"},
	)

	// FanoutEventsTotal tracks fan-out events dispatched per topic kind.
	FanoutEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_events_total",
			Help: "Fan-out events dispatched to topic subscribers",
		},
		[]string{"topic_kind"},
	)

	// FanoutDroppedTotal tracks payloads dropped on full or closed send queues.
	FanoutDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_dropped_total",
			Help: "Fan-out payloads dropped due to slow or closed subscribers",
		},
	)

	// NotificationsTotal tracks notifications created by type.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total notifications created",
		},
		[]string{"type"},
	)

	// MessagesTotal tracks chat messages persisted.
	MessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages persisted",
		},
	)

	// BridgeEventsTotal tracks events published/received over the NATS bridge.
	BridgeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_bridge_events_total",
			Help: "Fan-out events crossing the NATS bridge",
		},
		[]string{"direction"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAction records metrics for a processed client action.
func RecordAction(channel, action, status string, duration float64) {
	ActionsTotal.WithLabelValues(channel, action, status).Inc()
	ActionDuration.WithLabelValues(channel, action).Observe(duration)
}
