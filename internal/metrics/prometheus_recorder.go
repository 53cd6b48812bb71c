package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	assets        *prom.CounterVec
	references    *prom.CounterVec
	cyclesBroken  prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "assetrev",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual revision stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "assetrev",
		Name:      "run_duration_seconds",
		Help:      "Total revision run duration",
		Buckets:   prom.DefBuckets,
	})
	pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "assetrev",
		Name:      "run_outcomes_total",
		Help:      "Revision runs by final status",
	}, []string{"outcome"})
	pr.assets = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "assetrev",
		Name:      "assets_total",
		Help:      "Assets processed by kind",
	}, []string{"kind"})
	pr.references = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "assetrev",
		Name:      "references_total",
		Help:      "Extracted references by resolution result",
	}, []string{"result"})
	pr.cyclesBroken = prom.NewCounter(prom.CounterOpts{
		Namespace: "assetrev",
		Name:      "cycles_broken_total",
		Help:      "Reference cycles broken with the own-content fallback digest",
	})
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.runOutcome, pr.assets, pr.references, pr.cyclesBroken)
	return pr
}

// Registry returns the registry the collectors were registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(filename string) error {
	return prom.WriteToTextfile(filename, p.reg)
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcome) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddAssets(kind AssetKind, n int) {
	if p == nil || p.assets == nil || n <= 0 {
		return
	}
	p.assets.WithLabelValues(string(kind)).Add(float64(n))
}

func (p *PrometheusRecorder) AddReferences(resolved, unresolved int) {
	if p == nil || p.references == nil {
		return
	}
	if resolved > 0 {
		p.references.WithLabelValues("resolved").Add(float64(resolved))
	}
	if unresolved > 0 {
		p.references.WithLabelValues("unresolved").Add(float64(unresolved))
	}
}

func (p *PrometheusRecorder) IncCyclesBroken() {
	if p == nil || p.cyclesBroken == nil {
		return
	}
	p.cyclesBroken.Inc()
}
