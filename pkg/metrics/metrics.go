// Package metrics exposes capture and parse counters for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/parser"
)

// Metric names.
const (
	CapturesTotal        = "afv_captures_total"
	CaptureFailuresTotal = "afv_capture_failures_total"
	PassTotal            = "afv_scan_pass_total"
	ActiveTracks         = "afv_active_tracks"
	Clients              = "afv_clients"
	ParseDuration        = "afv_parse_duration_seconds"
)

// PromMetrics records analysis results.
type PromMetrics struct {
	counters map[string]prometheus.Counter
	passes   *prometheus.CounterVec
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromMetrics creates the collectors and registers them with reg. A nil
// reg uses the default registerer.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	captures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: CapturesTotal,
		Help: "Dumps analyzed, failures included.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: CaptureFailuresTotal,
		Help: "Captures where the privileged channel returned a failure instead of a dump.",
	})
	passes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: PassTotal,
		Help: "Analyses by the scan pass that produced the tracks (structured, relaxed, none).",
	}, []string{"pass"})
	tracks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ActiveTracks,
		Help: "Active audio tracks in the most recent snapshot.",
	})
	clients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: Clients,
		Help: "Notification clients in the most recent dump.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ParseDuration,
		Help:    "Time spent parsing one dump.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	reg.MustRegister(captures, failures, passes, tracks, clients, duration)

	return &PromMetrics{
		counters: map[string]prometheus.Counter{
			CapturesTotal:        captures,
			CaptureFailuresTotal: failures,
		},
		passes: passes,
		gauges: map[string]prometheus.Gauge{
			ActiveTracks: tracks,
			Clients:      clients,
		},
		histos: map[string]prometheus.Observer{
			ParseDuration: duration,
		},
	}
}

// IncCounter adds v to the named counter.
func (p *PromMetrics) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

// SetGauge sets the named gauge.
func (p *PromMetrics) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

// ObserveLatency records seconds in the named histogram.
func (p *PromMetrics) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

// ObserveResult records one analysis. Failures leave the snapshot gauges
// untouched.
func (p *PromMetrics) ObserveResult(r *analyzer.AnalysisResult) {
	if p == nil || r == nil {
		return
	}

	p.IncCounter(CapturesTotal, 1)
	p.ObserveLatency(ParseDuration, r.Duration().Seconds())

	if r.IsFailure() {
		p.IncCounter(CaptureFailuresTotal, 1)
		return
	}

	pass := r.Metadata.Pass
	if pass == "" {
		pass = parser.PassNone
	}
	p.passes.WithLabelValues(string(pass)).Inc()

	tracks := 0
	if r.Snapshot != nil {
		tracks = len(r.Snapshot.Tracks)
	}
	p.SetGauge(ActiveTracks, float64(tracks))
	p.SetGauge(Clients, float64(len(r.Clients)))
}
