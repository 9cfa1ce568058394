package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Tracking metrics
	PositionSamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "position_samples_total",
			Help: "Total number of position samples by outcome",
		},
		[]string{"outcome"},
	)

	SpeedUpdatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speed_updates_rejected_total",
			Help: "Total number of raw speed values rejected by the plausibility gate",
		},
		[]string{"reason"},
	)

	SmoothedSpeedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoothed_speed_mps",
			Help: "Current smoothed speed in meters per second",
		},
	)

	GeofenceTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geofence_transitions_total",
			Help: "Total number of geofence transitions",
		},
		[]string{"kind", "notified"},
	)

	AlertsShownTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_shown_total",
			Help: "Total number of alerts shown in the attention slot",
		},
		[]string{"severity"},
	)

	StoreCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_calls_total",
			Help: "Total number of remote store calls",
		},
		[]string{"action", "status"},
	)

	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_call_duration_seconds",
			Help:    "Remote store call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)

	MQTTMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mqtt_messages_received_total",
			Help: "Total number of MQTT location messages received",
		},
		[]string{"status"},
	)
)

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordSample records the outcome of one position sample ("accepted" or a reject reason)
func RecordSample(outcome string) {
	PositionSamplesTotal.WithLabelValues(outcome).Inc()
}

// RecordTransition records a geofence transition
func RecordTransition(kind string, notified bool) {
	GeofenceTransitionsTotal.WithLabelValues(kind, strconv.FormatBool(notified)).Inc()
}

// RecordStoreCall records remote store call metrics
func RecordStoreCall(action string, err error, duration time.Duration) {
	StoreCallsTotal.WithLabelValues(action, statusOf(err)).Inc()
	StoreCallDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(service, operation, statusOf(err)).Inc()
	DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, queue string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(service, queue, statusOf(err)).Inc()
}

// RecordMQTTMessage records an incoming MQTT location message
func RecordMQTTMessage(err error) {
	MQTTMessagesReceived.WithLabelValues(statusOf(err)).Inc()
}
