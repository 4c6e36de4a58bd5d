package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the OCR engines.
type Metrics struct {
	// Recognition latency by engine
	RecognizeLatency *prometheus.HistogramVec

	// Recognition failures by engine
	RecognizeFailures *prometheus.CounterVec

	// Cache lookups by result: "hit", "miss", "error"
	CacheLookups *prometheus.CounterVec
}

// New creates a new Metrics instance with all OCR metrics registered.
func New() *Metrics {
	return &Metrics{
		RecognizeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_ocr_recognize_duration_seconds",
			Help:    "Duration of OCR recognition by engine",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"engine"}),

		RecognizeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_ocr_failures_total",
			Help: "Total OCR recognition failures by engine",
		}, []string{"engine"}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_ocr_cache_lookups_total",
			Help: "Total OCR cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveRecognizeLatency records the duration of one recognition.
func (m *Metrics) ObserveRecognizeLatency(engine string, d time.Duration) {
	if m != nil {
		m.RecognizeLatency.WithLabelValues(engine).Observe(d.Seconds())
	}
}

// IncrementFailure records a failed recognition.
func (m *Metrics) IncrementFailure(engine string) {
	if m != nil {
		m.RecognizeFailures.WithLabelValues(engine).Inc()
	}
}

// IncrementCacheHit records a cache hit.
func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

// IncrementCacheMiss records a cache miss.
func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// IncrementCacheError records a cache read or write failure.
func (m *Metrics) IncrementCacheError() {
	if m != nil {
		m.CacheLookups.WithLabelValues("error").Inc()
	}
}
