package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for the ledger engine. All methods are
// nil-safe so services can run without a metrics sink wired in.
type Metrics struct {
	registry       *prometheus.Registry
	opsTotal       *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
	persistErrors  *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpile_ledger_operations_total",
		Help: "Ledger operations by module, operation, and result.",
	}, []string{"module", "op", "result"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpile_stock_movements_total",
		Help: "Units moved through the stock catalog by direction.",
	}, []string{"direction"})
	persist := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpile_persistence_errors_total",
		Help: "Load/save failures by data file.",
	}, []string{"file"})
	registry.MustRegister(ops, movements, persist)
	return &Metrics{
		registry:       registry,
		opsTotal:       ops,
		stockMovements: movements,
		persistErrors:  persist,
	}
}

// ObserveOp records one ledger operation outcome. Result is "ok", "error",
// or a more specific verdict like "rejected".
func (m *Metrics) ObserveOp(module, op, result string) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues(module, op, result).Inc()
}

// ObserveMovement records stock units moved in or out of the catalog.
func (m *Metrics) ObserveMovement(delta int) {
	if m == nil || delta == 0 {
		return
	}
	if delta > 0 {
		m.stockMovements.WithLabelValues("in").Add(float64(delta))
		return
	}
	m.stockMovements.WithLabelValues("out").Add(float64(-delta))
}

// ObservePersistError records a load or save failure for a data file.
func (m *Metrics) ObservePersistError(file string) {
	if m == nil {
		return
	}
	m.persistErrors.WithLabelValues(file).Inc()
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer exposes the registry for scraping or test inspection.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}
