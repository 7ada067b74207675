// Package metrics exposes Prometheus instrumentation for the identity
// engine. A nil collector disables everything, so the manager never has to
// check whether metrics are wired.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// #region collector

// Collector holds the engine's metric set.
type Collector struct {
	authAttempts         *prometheus.CounterVec
	enrollments          *prometheus.CounterVec
	continuousConfidence prometheus.Gauge
	enrolled             prometheus.Gauge
}

// NewCollector registers the metric set with the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsegate",
			Name:      "auth_attempts_total",
			Help:      "Authentication attempts by level and outcome.",
		}, []string{"level", "outcome"}),
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsegate",
			Name:      "enrollments_total",
			Help:      "Enrollment ceremonies by outcome.",
		}, []string{"outcome"}),
		continuousConfidence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsegate",
			Name:      "continuous_confidence",
			Help:      "Most recent continuous-auth confidence.",
		}),
		enrolled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsegate",
			Name:      "enrolled",
			Help:      "1 when an enrollment record exists.",
		}),
	}
	reg.MustRegister(c.authAttempts, c.enrollments, c.continuousConfidence, c.enrolled)
	return c
}

// #endregion collector

// #region observers

// ObserveAuth counts one authentication attempt.
func (c *Collector) ObserveAuth(level, outcome string) {
	if c == nil {
		return
	}
	c.authAttempts.WithLabelValues(level, outcome).Inc()
}

// ObserveEnrollment counts one enrollment ceremony.
func (c *Collector) ObserveEnrollment(outcome string) {
	if c == nil {
		return
	}
	c.enrollments.WithLabelValues(outcome).Inc()
}

// SetContinuousConfidence records the latest continuous-auth confidence.
func (c *Collector) SetContinuousConfidence(v float64) {
	if c == nil {
		return
	}
	c.continuousConfidence.Set(v)
}

// SetEnrolled flags whether an enrollment record exists.
func (c *Collector) SetEnrolled(enrolled bool) {
	if c == nil {
		return
	}
	if enrolled {
		c.enrolled.Set(1)
	} else {
		c.enrolled.Set(0)
	}
}

// #endregion observers
