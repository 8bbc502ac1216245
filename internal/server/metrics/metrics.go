// Package metrics exposes registry counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "anonid"

// Outcome labels for registration and verification attempts.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Metrics groups the collectors recorded by the registration service.
type Metrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	verifications *prometheus.CounterVec
	difficulty    prometheus.Histogram
	registered    prometheus.Gauge
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by algorithm and outcome.",
		}, []string{"algorithm", "outcome"}),
		verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Stand-alone proof verifications by outcome.",
		}, []string{"outcome"}),
		difficulty: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "accepted_difficulty",
			Help:      "Adjusted difficulty of accepted registrations.",
			Buckets:   prometheus.LinearBuckets(0, 2, 16),
		}),
		registered: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_usernames",
			Help:      "Usernames currently held by the registry.",
		}),
	}
}

// Registration counts one registration attempt.
func (m *Metrics) Registration(algorithm, outcome string) {
	m.registrations.WithLabelValues(algorithm, outcome).Inc()
}

// Accepted records the difficulty of an accepted proof.
func (m *Metrics) Accepted(difficulty uint) {
	m.difficulty.Observe(float64(difficulty))
	m.registered.Inc()
}

// SetRegistered sets the registered usernames gauge, typically at startup.
func (m *Metrics) SetRegistered(n int64) {
	m.registered.Set(float64(n))
}

// Verification counts one stand-alone verification.
func (m *Metrics) Verification(outcome string) {
	m.verifications.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
