package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveOpCountsByResult(t *testing.T) {
	m := NewMetrics()
	m.ObserveOp("sales", "finalize", "ok")
	m.ObserveOp("sales", "finalize", "ok")
	m.ObserveOp("sales", "finalize", "error")

	ok := m.opsTotal.WithLabelValues("sales", "finalize", "ok")
	failed := m.opsTotal.WithLabelValues("sales", "finalize", "error")
	require.Equal(t, 2.0, testutil.ToFloat64(ok))
	require.Equal(t, 1.0, testutil.ToFloat64(failed))
}

func TestObserveMovementSplitsDirection(t *testing.T) {
	m := NewMetrics()
	m.ObserveMovement(5)
	m.ObserveMovement(-3)
	m.ObserveMovement(0)

	require.Equal(t, 5.0, testutil.ToFloat64(m.stockMovements.WithLabelValues("in")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.stockMovements.WithLabelValues("out")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOp("sales", "finalize", "ok")
	m.ObserveMovement(1)
	m.ObservePersistError("items.csv")
	require.NotNil(t, m.Registerer())
}
