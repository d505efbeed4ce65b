package observability

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder defines the metrics operations emitted by the build pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection requires no nil checks and costs nothing
// unless a real implementation is wired in (serve mode wires Prometheus).
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	IncIssue(code, stage, severity string)
	SetPagesRendered(n int)
}

// NoopRecorder is the default Recorder; all methods inline to nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) IncIssue(string, string, string)            {}
func (NoopRecorder) SetPagesRendered(int)                       {}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	issues        *prom.CounterVec
	pagesRendered prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "folio_stage_duration_seconds",
			Help:    "Duration of individual build stages.",
			Buckets: prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Name:    "folio_build_duration_seconds",
			Help:    "Total duration of site builds.",
			Buckets: prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Name: "folio_build_outcome_total",
			Help: "Count of build outcomes by status.",
		}, []string{"outcome"}),
		issues: prom.NewCounterVec(prom.CounterOpts{
			Name: "folio_build_issues_total",
			Help: "Count of structured build issues.",
		}, []string{"code", "stage", "severity"}),
		pagesRendered: prom.NewGauge(prom.GaugeOpts{
			Name: "folio_pages_rendered",
			Help: "Pages rendered by the most recent build.",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.issues, pr.pagesRendered)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncIssue(code, stage, severity string) {
	p.issues.WithLabelValues(code, stage, severity).Inc()
}

func (p *PrometheusRecorder) SetPagesRendered(n int) {
	p.pagesRendered.Set(float64(n))
}

// MetricsHandler returns an http.Handler serving Prometheus metrics for reg.
func MetricsHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
