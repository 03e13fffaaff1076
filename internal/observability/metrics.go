package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "job_tracker"

// Metrics holds the Prometheus collectors for the tracker and its HTTP API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight     prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	trackerOps       *prometheus.CounterVec
	malformedRecords prometheus.Counter
	managers         prometheus.Gauge
}

// NewMetrics creates and registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		trackerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "operations_total",
			Help:      "Application list operations by outcome.",
		}, []string{"op", "result"}),
		malformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "malformed_records_total",
			Help:      "Store rows skipped because they could not be mapped.",
		}),
		managers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "active_lists",
			Help:      "Number of per-identity application lists held in memory.",
		}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.trackerOps,
		m.malformedRecords,
		m.managers,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordOperation counts one tracker operation.
func (m *Metrics) RecordOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.trackerOps.WithLabelValues(op, result).Inc()
}

// RecordMalformed counts rows skipped during a load.
func (m *Metrics) RecordMalformed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.malformedRecords.Add(float64(n))
}

// SetActiveLists reports how many per-identity lists are held.
func (m *Metrics) SetActiveLists(n int) {
	if m == nil {
		return
	}
	m.managers.Set(float64(n))
}

// RequestStarted increments the in-flight gauge and returns a func that
// decrements it and records the finished request.
func (m *Metrics) RequestStarted() func(method, route, status string, seconds float64) {
	if m == nil {
		return func(string, string, string, float64) {}
	}
	m.httpInFlight.Inc()
	return func(method, route, status string, seconds float64) {
		m.httpInFlight.Dec()
		m.httpRequests.WithLabelValues(method, route, status).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(seconds)
	}
}
