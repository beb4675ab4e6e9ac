// Package metrics exposes Prometheus instrumentation for the content engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the engine's Prometheus collectors. A nil *Recorder is
// valid and records nothing, so instrumentation stays optional in tests.
type Recorder struct {
	analyses  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	flagged   *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New registers the engine collectors with reg and returns a Recorder.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "analyses_total",
			Help:      "Completed content analyses by source.",
		}, []string{"source"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "provider_fallbacks_total",
			Help:      "External provider calls that fell back to the local heuristic.",
		}, []string{"component"}),
		flagged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "moderation_flags_total",
			Help:      "Moderation category flags raised.",
		}, []string{"category"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "content_engine",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full content analysis.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// AnalysisCompleted records one finished analysis. Source is "engine" for a
// fresh computation or "cache" for a cache hit.
func (r *Recorder) AnalysisCompleted(source string, d time.Duration) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(source).Inc()
	if source != "cache" {
		r.duration.Observe(d.Seconds())
	}
}

// ProviderFallback records a component degrading to its local heuristic.
func (r *Recorder) ProviderFallback(component string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(component).Inc()
}

// ModerationFlagged records a raised moderation category.
func (r *Recorder) ModerationFlagged(category string) {
	if r == nil {
		return
	}
	r.flagged.WithLabelValues(category).Inc()
}
