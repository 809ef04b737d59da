package metrics

import (
	"time"

	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/prometheus/client_golang/prometheus"
)

// SubmissionMetrics records order submissions and logo uploads.
type SubmissionMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	uploads  *prometheus.CounterVec
}

// NewSubmissionMetrics registers the submission metrics on the provided registerer.
func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	if reg == nil {
		return &SubmissionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submission_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "logo_uploads_total",
		Help: "Logo uploads by storage provider and result.",
	}, []string{"provider", "result"})
	reg.MustRegister(duration, total, uploads)
	return &SubmissionMetrics{
		duration: duration,
		total:    total,
		uploads:  uploads,
	}
}

// ObserveSubmission counts the outcome and records how long it took.
func (m *SubmissionMetrics) ObserveSubmission(outcome enums.SubmissionOutcome, elapsed time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	label := normalizeLabel(string(outcome))
	m.total.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *SubmissionMetrics) ObserveUpload(provider enums.StorageProvider, success bool) {
	if m == nil || m.uploads == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.uploads.WithLabelValues(normalizeLabel(string(provider)), result).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
