package profiler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the counters of one simulation. Every instance owns its
// registry so that several simulations can run in one process.
type Metrics struct {
	Registry *prometheus.Registry

	Steals         prometheus.Counter
	FailedSteals   prometheus.Counter
	DeadlineMisses prometheus.Counter
	Rejections     prometheus.Counter
	CacheLookups   *prometheus.CounterVec
}

// NewMetrics creates and registers the counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Steals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fivegsim_steals_total",
			Help: "Processes moved by the load balancer.",
		}),
		FailedSteals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fivegsim_failed_steals_total",
			Help: "Steal attempts that found nothing to move.",
		}),
		DeadlineMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fivegsim_deadline_misses_total",
			Help: "Applications killed at their deadline.",
		}),
		Rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fivegsim_rejected_applications_total",
			Help: "Applications the resource manager did not admit.",
		}),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fivegsim_pareto_cache_lookups_total",
				Help: "Pareto cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	m.Registry.MustRegister(
		m.Steals,
		m.FailedSteals,
		m.DeadlineMisses,
		m.Rejections,
		m.CacheLookups,
	)

	return m
}
