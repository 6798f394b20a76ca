package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "channel_reporter"

type Metrics struct {
	// submissions per outcome (success|failure)
	Submissions *prometheus.CounterVec

	// bulk jobs per final status (completed|canceled|empty)
	BulkJobs *prometheus.CounterVec

	// progress edits rejected by the transport
	StatusUpdateFailures prometheus.Counter

	// lines dropped by the target normalizer
	UnparseableTargets prometheus.Counter

	// wall-clock latency of one gateway submission
	SubmitLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Total report submissions by outcome",
			},
			[]string{"outcome"},
		),
		BulkJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_jobs_total",
				Help:      "Total bulk jobs by final status",
			},
			[]string{"status"},
		),
		StatusUpdateFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_update_failures_total",
				Help:      "Total status message updates that could not be delivered",
			},
		),
		UnparseableTargets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unparseable_targets_total",
				Help:      "Total target lines rejected by the normalizer",
			},
		),
		SubmitLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submit_duration_seconds",
				Help:      "Histogram of report submission latencies",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Submissions,
			m.BulkJobs,
			m.StatusUpdateFailures,
			m.UnparseableTargets,
			m.SubmitLatency,
		)
	}
	return m
}

func (m *Metrics) ObserveSubmission(succeeded bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmitLatency.Observe(seconds)
}

func (m *Metrics) ObserveStatusUpdateFailure() {
	if m == nil {
		return
	}
	m.StatusUpdateFailures.Inc()
}

func (m *Metrics) ObserveUnparseable(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.UnparseableTargets.Add(float64(count))
}

func (m *Metrics) ObserveBulkJob(status string) {
	if m == nil {
		return
	}
	m.BulkJobs.WithLabelValues(status).Inc()
}
