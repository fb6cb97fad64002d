// Package monitoring collects Prometheus metrics for the bridge: HTTP
// traffic, per-tool operation outcomes, live handle and watch-session
// counts, and the event stream.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Filesystem operation metrics
	OpsTotal   *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec
	OpErrors   *prometheus.CounterVec

	// Resource gauges
	HandlesOpen   prometheus.Gauge
	WatchSessions prometheus.Gauge

	// Event stream metrics
	WSConnections prometheus.Gauge
	EventBatches  prometheus.Counter
	EventsTotal   prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates the metrics collector and registers every series.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		OpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsbridge_ops_total",
				Help: "Total number of filesystem operations",
			},
			[]string{"tool", "status"},
		),
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsbridge_op_duration_seconds",
				Help:    "Filesystem operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"tool"},
		),
		OpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsbridge_op_errors_total",
				Help: "Filesystem operation failures by error kind",
			},
			[]string{"tool", "kind"},
		),

		HandlesOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsbridge_handles_open",
				Help: "Number of open file handles",
			},
		),
		WatchSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsbridge_watch_sessions",
				Help: "Number of active watch sessions",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsbridge_ws_connections",
				Help: "Number of active event-stream connections",
			},
		),
		EventBatches: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fsbridge_event_batches_total",
				Help: "Total number of change-event batches delivered",
			},
		),
		EventsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fsbridge_events_total",
				Help: "Total number of change events delivered",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsbridge_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}

	go m.updateUptime()
	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOp records a completed filesystem operation.
func (m *Metrics) RecordOp(tool, status string, duration time.Duration) {
	m.OpsTotal.WithLabelValues(tool, status).Inc()
	m.OpDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordOpError records a failed operation by taxonomy kind.
func (m *Metrics) RecordOpError(tool, kind string) {
	m.OpErrors.WithLabelValues(tool, kind).Inc()
}

// RecordBatch records one delivered event batch.
func (m *Metrics) RecordBatch(events int) {
	m.EventBatches.Inc()
	m.EventsTotal.Add(float64(events))
}

// SetHandlesOpen sets the open-handle gauge.
func (m *Metrics) SetHandlesOpen(count int) {
	m.HandlesOpen.Set(float64(count))
}

// SetWatchSessions sets the active watch-session gauge.
func (m *Metrics) SetWatchSessions(count int) {
	m.WatchSessions.Set(float64(count))
}

// IncWSConnections increments event-stream connections.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements event-stream connections.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
