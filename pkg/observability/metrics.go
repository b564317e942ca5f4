package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/sections/pkg/domain"
)

// Metrics records engine activity as Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	Repairs        *prometheus.CounterVec
	Cycles         prometheus.Histogram
	Normalizations *prometheus.CounterVec
}

// NewMetrics creates the engine metrics on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Repairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sections_repairs_total",
				Help: "Total number of structural repairs",
			},
			[]string{"event", "element"},
		),
		Cycles: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sections_repair_cycles",
				Help:    "Post-fixer cycles needed per committed change",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
		),
		Normalizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sections_normalizations_total",
				Help: "Total number of normalized documents",
			},
			[]string{"status"},
		),
	}
	m.registry.MustRegister(m.Repairs, m.Cycles, m.Normalizations)
	return m
}

// Registry returns the registry holding the engine metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Hooks returns lifecycle hooks feeding the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	repair := func(_ context.Context, e *domain.RepairEvent) {
		m.Repairs.WithLabelValues(string(e.Type), e.Element).Inc()
	}
	return domain.LifecycleHooks{
		OnRepairCycle: func(_ context.Context, e *domain.RepairEvent) {
			m.Cycles.Observe(float64(e.Cycles))
		},
		OnSlotCreated: repair,
		OnSlotMoved:   repair,
		OnRootRepair:  repair,
	}
}

// ObserveNormalization counts a normalization by outcome.
func (m *Metrics) ObserveNormalization(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Normalizations.WithLabelValues(status).Inc()
}

// Handler exposes the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
