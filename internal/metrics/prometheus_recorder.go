package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "florentcc"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	pages            *prom.CounterVec
	filterFallbacks  *prom.CounterVec
	passthroughFiles prom.Counter
	buildOutcome     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		pages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed by a build, by result (written, unchanged, skipped)",
		}, []string{"result"}),
		filterFallbacks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "filter_fallbacks_total",
			Help:      "Filter calls that could not interpret their input",
		}, []string{"filter"}),
		passthroughFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "passthrough_files_total",
			Help:      "Files copied verbatim to the output",
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.pages, pr.filterFallbacks, pr.passthroughFiles, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPage(result PageResult) {
	if p == nil {
		return
	}
	p.pages.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncFilterFallback(filter string) {
	if p == nil {
		return
	}
	p.filterFallbacks.WithLabelValues(filter).Inc()
}

func (p *PrometheusRecorder) AddPassthroughFiles(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.passthroughFiles.Add(float64(n))
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}
