package wizard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts wizard transitions and submissions. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	transitions        *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
}

// NewMetrics creates the wizard collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kconsole",
				Subsystem: "wizard",
				Name:      "transitions_total",
				Help:      "Total number of step transitions by step and result",
			},
			[]string{"wizard", "step", "result"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kconsole",
				Subsystem: "wizard",
				Name:      "submissions_total",
				Help:      "Total number of create requests by result",
			},
			[]string{"wizard", "result"},
		),
		submissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kconsole",
				Subsystem: "wizard",
				Name:      "submission_duration_seconds",
				Help:      "Duration of create requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"wizard"},
		),
	}
	reg.MustRegister(m.transitions, m.submissions, m.submissionDuration)
	return m
}

// Transition results.
const (
	resultAdvanced  = "advanced"
	resultRetreated = "retreated"
	resultInvalid   = "invalid"
	resultWarning   = "warning"
)

// Submission results.
const (
	resultCreated   = "created"
	resultRejected  = "rejected"
	resultCancelled = "cancelled"
	// created, but the readiness wait failed
	resultUnconfirmed = "unconfirmed"
)

func (m *Metrics) recordTransition(wizard, step, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(wizard, step, result).Inc()
}

func (m *Metrics) recordSubmission(wizard, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(wizard, result).Inc()
	m.submissionDuration.WithLabelValues(wizard).Observe(d.Seconds())
}
