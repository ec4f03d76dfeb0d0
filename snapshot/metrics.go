package snapshot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments of a Snapshotter. A nil *Metrics
// records nothing.
type Metrics struct {
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	SizeRatio        prometheus.Histogram
	AdaptiveSearches *prometheus.CounterVec
	AdaptiveAttempts prometheus.Histogram
	AdaptiveDuration prometheus.Histogram
}

// NewMetrics creates the instruments and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "domsnap",
			Subsystem: "snapshot",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome (ok, error)",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "domsnap",
			Subsystem: "snapshot",
			Name:      "run_duration_seconds",
			Help:      "Duration of one pipeline run in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SizeRatio: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "domsnap",
			Subsystem: "snapshot",
			Name:      "size_ratio",
			Help:      "Snapshot size divided by original size",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		AdaptiveSearches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "domsnap",
			Subsystem: "adaptive",
			Name:      "searches_total",
			Help:      "Adaptive searches by outcome (ok, budget_unreachable)",
		}, []string{"outcome"}),
		AdaptiveAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "domsnap",
			Subsystem: "adaptive",
			Name:      "attempts",
			Help:      "Pipeline runs used by one adaptive search",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		AdaptiveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "domsnap",
			Subsystem: "adaptive",
			Name:      "duration_seconds",
			Help:      "Duration of one adaptive search in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeRun(outcome string, ratio float64, d time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
	if outcome == "ok" {
		m.SizeRatio.Observe(ratio)
	}
}

func (m *Metrics) observeAdaptive(outcome string, attempts int, d time.Duration) {
	if m == nil {
		return
	}
	m.AdaptiveSearches.WithLabelValues(outcome).Inc()
	m.AdaptiveAttempts.Observe(float64(attempts))
	m.AdaptiveDuration.Observe(d.Seconds())
}
