package codegen

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline activity for the /metrics endpoint.
type Metrics struct {
	StepsTotal *prometheus.CounterVec
	CacheHits  prometheus.Counter
	Retries    prometheus.Counter
	Failures   prometheus.Counter
	Skipped    prometheus.Counter
}

// NewMetrics registers pipeline counters on reg. A nil reg uses the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patternflow",
			Subsystem: "codegen",
			Name:      "steps_total",
			Help:      "Generation steps executed, by step name.",
		}, []string{"step"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patternflow",
			Subsystem: "codegen",
			Name:      "cache_hits_total",
			Help:      "Prompt cache hits.",
		}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patternflow",
			Subsystem: "codegen",
			Name:      "retries_total",
			Help:      "Provider call retries.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patternflow",
			Subsystem: "codegen",
			Name:      "failures_total",
			Help:      "Steps that failed after all retries.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patternflow",
			Subsystem: "codegen",
			Name:      "skipped_total",
			Help:      "Steps skipped because the output is up to date.",
		}),
	}

	reg.MustRegister(m.StepsTotal, m.CacheHits, m.Retries, m.Failures, m.Skipped)
	return m
}
