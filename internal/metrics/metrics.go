// Package metrics exposes prometheus instrumentation for the request
// pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	requests   *prometheus.CounterVec
	exceptions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
}

// New creates and registers the pipeline collectors. Passing nil uses the
// default prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weft",
			Name:      "requests_total",
			Help:      "Requests processed by the application pipeline.",
		}, []string{"method", "status"}),
		exceptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weft",
			Name:      "exceptions_total",
			Help:      "Failures routed through the exception handler.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weft",
			Name:      "request_duration_seconds",
			Help:      "Pipeline run duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weft",
			Name:      "requests_in_flight",
			Help:      "Pipeline runs currently executing.",
		}),
	}
	reg.MustRegister(m.requests, m.exceptions, m.duration, m.inFlight)
	return m
}

// RecordRequest counts one completed pipeline run.
func (m *Metrics) RecordRequest(method string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordException counts one exception-handled failure.
func (m *Metrics) RecordException(status int) {
	m.exceptions.WithLabelValues(strconv.Itoa(status)).Inc()
}

// IncInFlight marks a pipeline run as started.
func (m *Metrics) IncInFlight() { m.inFlight.Inc() }

// DecInFlight marks a pipeline run as finished.
func (m *Metrics) DecInFlight() { m.inFlight.Dec() }
