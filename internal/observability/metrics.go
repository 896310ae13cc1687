// Package observability exposes pipeline counters and timings as
// Prometheus collectors.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Target outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics bundles the pipeline's collectors.
type Metrics struct {
	Targets            *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	Rejections         *prometheus.CounterVec
	AcceptedVariants   prometheus.Counter
	CacheHits          prometheus.Counter
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		Targets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cultivar_targets_total",
				Help: "Targets processed, by outcome",
			},
			[]string{"status"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "cultivar_generation_duration_seconds",
				Help: "Wall time of backend generation calls",
			},
			[]string{"provider"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cultivar_rejected_candidates_total",
				Help: "Candidates rejected by the validator, by rule",
			},
			[]string{"rule"},
		),
		AcceptedVariants: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cultivar_accepted_variants_total",
			Help: "Variants accepted into the corpus",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cultivar_cache_hits_total",
			Help: "Generation calls served from the variant cache",
		}),
	}
}

// MustRegister registers all collectors on the given registerer.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Targets, m.GenerationDuration, m.Rejections, m.AcceptedVariants, m.CacheHits)
}
