package observe

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a Sink that records stage timings plus verification outcomes
// in a prometheus registry. All methods are safe on a nil receiver.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	documents     *prometheus.CounterVec
	issues        *prometheus.CounterVec
	ocrConfidence prometheus.Histogram
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mrzscan",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"stage"}),
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrzscan",
			Name:      "documents_total",
			Help:      "Documents processed by verdict.",
		}, []string{"verdict"}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mrzscan",
			Name:      "validation_issues_total",
			Help:      "Validation issues by code and severity.",
		}, []string{"code", "severity"}),
		ocrConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mrzscan",
			Name:      "ocr_confidence",
			Help:      "Overall OCR confidence reported by the engine.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}

func (m *Metrics) Emit(_ context.Context, e Event) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(e.Stage).Observe(e.Elapsed.Seconds())
}

// Verdict counts one finished document. verdict is pass, fail or error.
func (m *Metrics) Verdict(verdict string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(verdict).Inc()
}

// Issue counts one validation finding.
func (m *Metrics) Issue(code, severity string) {
	if m == nil {
		return
	}
	m.issues.WithLabelValues(code, severity).Inc()
}

// OCRConfidence records an engine confidence in [0,1].
func (m *Metrics) OCRConfidence(v float64) {
	if m == nil {
		return
	}
	m.ocrConfidence.Observe(v)
}
