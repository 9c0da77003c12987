package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Messaging-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crewlink",
			Subsystem: "messaging_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crewlink",
			Subsystem: "messaging_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Messages appended to the ledger
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crewlink",
			Subsystem: "messaging_api",
			Name:      "messages_sent_total",
			Help:      "Total messages accepted into the ledger",
		},
		[]string{"content_type"},
	)

	// Fan-out events pushed to live connections
	FanoutEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crewlink",
			Subsystem: "messaging_api",
			Name:      "fanout_events_total",
			Help:      "Total events delivered to websocket connections",
		},
		[]string{"event_type"},
	)

	// Fan-out deliveries dropped
	FanoutDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crewlink",
			Subsystem: "messaging_api",
			Name:      "fanout_dropped_total",
			Help:      "Total events dropped instead of delivered",
		},
		[]string{"reason"},
	)

	// Live websocket connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "crewlink",
			Subsystem: "messaging_api",
			Name:      "active_connections",
			Help:      "Currently registered websocket connections",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordMessageSent records a message accepted into the ledger
func RecordMessageSent(contentType string) {
	MessagesSentTotal.WithLabelValues(contentType).Inc()
}

// RecordFanout records an event delivered to a connection
func RecordFanout(eventType string) {
	FanoutEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordFanoutDropped records a delivery that was dropped
func RecordFanoutDropped(reason string) {
	FanoutDroppedTotal.WithLabelValues(reason).Inc()
}
