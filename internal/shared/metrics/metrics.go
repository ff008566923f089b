package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the workflow counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	jobRuns            *prometheus.CounterVec
	callAttempts       *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	jobDuration        prometheus.Histogram
}

// New registers the workflow metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_job_runs_total",
				Help: "Total summary jobs by outcome",
			},
			[]string{"outcome"},
		),
		callAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_call_attempts_total",
				Help: "Total completion service call attempts by outcome",
			},
			[]string{"outcome"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_validation_failures_total",
				Help: "Total result validation failures by category",
			},
			[]string{"error_type"},
		),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "summary_job_duration_seconds",
			Help:    "Summary job duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
	}
	reg.MustRegister(m.jobRuns, m.callAttempts, m.validationFailures, m.jobDuration)
	return m
}

// IncJobRun counts a finished job; outcome is "succeeded" or "failed".
func (m *Metrics) IncJobRun(outcome string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(outcome).Inc()
}

// IncCallAttempt counts one call attempt; outcome is "success" or an error category.
func (m *Metrics) IncCallAttempt(outcome string) {
	if m == nil {
		return
	}
	m.callAttempts.WithLabelValues(outcome).Inc()
}

// IncValidationFailure counts a rejected result.
func (m *Metrics) IncValidationFailure(category string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(category).Inc()
}

// ObserveJobDuration records the wall time of one job.
func (m *Metrics) ObserveJobDuration(d time.Duration) {
	if m == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	m.jobDuration.Observe(d.Seconds())
}

// WriteTextfile dumps the registry in Prometheus text format for the node
// exporter textfile collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
