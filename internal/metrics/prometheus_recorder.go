package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	targetDuration *prom.HistogramVec
	targetOutcomes *prom.CounterVec
	lastWarnings   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		targetDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docmake",
			Name:      "target_duration_seconds",
			Help:      "Duration of build target runs",
			Buckets:   prom.DefBuckets,
		}, []string{"target"}),
		targetOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docmake",
			Name:      "target_outcomes_total",
			Help:      "Target results by outcome",
		}, []string{"target", "outcome"}),
		lastWarnings: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docmake",
			Name:      "last_build_warnings",
			Help:      "Diagnostics in the warnings log of the most recent build",
		}),
	}
	reg.MustRegister(pr.targetDuration, pr.targetOutcomes, pr.lastWarnings)
	return pr
}

func (pr *PrometheusRecorder) ObserveTargetDuration(target string, d time.Duration) {
	pr.targetDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncTargetOutcome(target, outcome string) {
	pr.targetOutcomes.WithLabelValues(target, outcome).Inc()
}

func (pr *PrometheusRecorder) SetWarnings(n int) {
	pr.lastWarnings.Set(float64(n))
}
