package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification pipeline.
type Metrics struct {
	// End-to-end verification latency
	VerifyLatency prometheus.Histogram

	// Eligibility decisions by outcome
	Decisions *prometheus.CounterVec

	// Analyzed documents by detected type ("unknown" when undetected)
	Documents *prometheus.CounterVec

	// Decoded MRZ records by format ("none" when no candidate was found)
	MrzFormats *prometheus.CounterVec
}

// New creates a new Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "docverify_verification_duration_seconds",
			Help:    "Duration of a full verification including OCR",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_eligibility_decisions_total",
			Help: "Total eligibility decisions by outcome",
		}, []string{"decision"}),

		Documents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_documents_analyzed_total",
			Help: "Total analyzed documents by detected type",
		}, []string{"detected_type"}),

		MrzFormats: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_mrz_decoded_total",
			Help: "Total MRZ decode attempts by resulting format",
		}, []string{"format"}),
	}
}

// ObserveVerifyLatency records the duration of one verification.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// IncrementDecision records an eligibility decision.
func (m *Metrics) IncrementDecision(decision string) {
	if m != nil {
		m.Decisions.WithLabelValues(decision).Inc()
	}
}

// IncrementDocument records an analyzed document.
func (m *Metrics) IncrementDocument(detectedType string) {
	if m != nil {
		m.Documents.WithLabelValues(detectedType).Inc()
	}
}

// IncrementMrzFormat records an MRZ decode outcome.
func (m *Metrics) IncrementMrzFormat(format string) {
	if m != nil {
		m.MrzFormats.WithLabelValues(format).Inc()
	}
}
