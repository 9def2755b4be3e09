// Package metrics exposes Prometheus metrics of the interview.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hh_screener"

// Metrics groups the interview collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Turns          *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	Fallbacks      *prometheus.CounterVec
	SessionsEnded  *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	Completions    *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Labels: phase
		Turns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interview",
				Name:      "turns_total",
				Help:      "Candidate messages handled, by phase at arrival",
			},
			[]string{"phase"},
		),
		// Labels: from, to
		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interview",
				Name:      "transitions_total",
				Help:      "Phase transitions",
			},
			[]string{"from", "to"},
		),
		// Labels: component (extraction, questions)
		Fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interview",
				Name:      "fallbacks_total",
				Help:      "Turns where the completion service was unusable and a fallback was used",
			},
			[]string{"component"},
		),
		// Labels: reason (completed, candidate_exit, error)
		SessionsEnded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interview",
				Name:      "sessions_ended_total",
				Help:      "Sessions that reached ENDED, by reason",
			},
			[]string{"reason"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "active_sessions",
				Help:      "Sessions held in memory",
			},
		),
		// Labels: task, result (success, error)
		Completions: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "completion_duration_seconds",
				Help:      "Duration of completion service calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"task", "result"},
		),
	}
}

func (m *Metrics) Turn(phase string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(phase).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Fallback(component string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(component).Inc()
}

func (m *Metrics) SessionEnded(reason string) {
	if m == nil {
		return
	}
	m.SessionsEnded.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// ObserveCompletion matches ai.Observer.
func (m *Metrics) ObserveCompletion(task string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Completions.WithLabelValues(task, result).Observe(elapsed.Seconds())
}
