package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "campus_chat"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Realtime metrics
	WSConnectionsTotal     prometheus.Counter
	WSActiveConnections    prometheus.Gauge
	WSRejectedHandshakes   prometheus.Counter
	RealtimeEventsTotal    *prometheus.CounterVec
	RealtimeDroppedTotal   *prometheus.CounterVec
	PresenceTransitions    *prometheus.CounterVec
	PresenceBookkeepErrors prometheus.Counter

	// Business metrics
	MessagesSentTotal   prometheus.Counter
	StatusesPostedTotal prometheus.Counter
	UploadsTotal        *prometheus.CounterVec
	RateLimitedTotal    *prometheus.CounterVec
	ExpiredStatusesDel  prometheus.Counter

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),

		WSConnectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "websocket_connections_total",
				Help:      "Total number of accepted realtime connections",
			},
		),
		WSActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_active_connections",
				Help:      "Number of registered realtime connections",
			},
		),
		WSRejectedHandshakes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "websocket_rejected_handshakes_total",
				Help:      "Total number of handshakes closed for authentication errors",
			},
		),
		RealtimeEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_events_dispatched_total",
				Help:      "Total number of events dispatched by the event router",
			},
			[]string{"event"},
		),
		RealtimeDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_deliveries_dropped_total",
				Help:      "Total number of per-recipient deliveries that could not be enqueued",
			},
			[]string{"event"},
		),
		PresenceTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "presence_transitions_total",
				Help:      "Total number of identity online/offline transitions",
			},
			[]string{"state"},
		),
		PresenceBookkeepErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "presence_bookkeeping_errors_total",
				Help:      "Total number of swallowed presence write failures",
			},
		),

		MessagesSentTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_sent_total",
				Help:      "Total number of chat messages persisted",
			},
		),
		StatusesPostedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statuses_posted_total",
				Help:      "Total number of statuses posted",
			},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Total number of stored uploads by file type",
			},
			[]string{"file_type"},
		),
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Total number of requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),
		ExpiredStatusesDel: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expired_statuses_deleted_total",
				Help:      "Total number of expired statuses removed by the cleanup job",
			},
		),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
