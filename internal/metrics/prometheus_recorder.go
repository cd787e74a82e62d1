package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdead"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	duration      prom.Histogram
	results       *prom.CounterVec
	unresolved    prom.Counter
	abbreviations prom.Counter
	outputBytes   prom.Histogram
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of a single document conversion",
			Buckets:   prom.DefBuckets,
		}),
		results: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Document conversions by result",
		}, []string{"result"}),
		unresolved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_references_total",
			Help:      "Reference links rendered as literal text because their key was not defined",
		}),
		abbreviations: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "abbreviations_total",
			Help:      "Abbreviation occurrences annotated in output",
		}),
		outputBytes: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "output_bytes",
			Help:      "Size of produced EAD documents",
			Buckets:   prom.ExponentialBuckets(256, 4, 8),
		}),
	}
	reg.MustRegister(pr.duration, pr.results, pr.unresolved, pr.abbreviations, pr.outputBytes)
	return pr
}

func (p *PrometheusRecorder) ObserveConversionDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.duration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncConversionResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.results.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddUnresolvedReferences(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.unresolved.Add(float64(n))
}

func (p *PrometheusRecorder) AddAbbreviations(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.abbreviations.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveOutputBytes(n int) {
	if p == nil {
		return
	}
	p.outputBytes.Observe(float64(n))
}
