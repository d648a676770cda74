package procurement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpile-ims/stockpile/internal/inventory"
	"github.com/stockpile-ims/stockpile/internal/masterdata/suppliers"
	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

func newTestLedger(t *testing.T) (*Service, *inventory.Catalog) {
	t.Helper()
	ctx := context.Background()
	catalog := inventory.NewCatalog(nil, nil)
	require.NoError(t, catalog.Create(ctx, inventory.StockItem{
		SKU: "MLK-1", Name: "Milk", Category: "Dairy", Quantity: 2, Price: 3.00,
	}))
	directory := suppliers.NewDirectory(nil)
	require.NoError(t, directory.Add(ctx, suppliers.Supplier{
		SupplierID: "SUP-1", Name: "Dairy Farm", ContactInfo: "farm@example.com",
	}))
	return NewService(catalog, directory, nil, nil), catalog
}

func placedOrder(t *testing.T, svc *Service, catalog *inventory.Catalog, qty int) Order {
	t.Helper()
	ctx := context.Background()
	order, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	item, err := catalog.Get(ctx, "MLK-1")
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, order.ID, item, qty, 2.50)
	require.NoError(t, err)
	order, err = svc.Place(ctx, order.ID)
	require.NoError(t, err)
	return order
}

func TestCreateRequiresKnownSupplier(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLedger(t)

	_, err := svc.Create(ctx, "SUP-MISSING")
	require.ErrorIs(t, err, shared.ErrNotFound)

	order, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, "SUP-1", order.SupplierID)
}

func TestPartialThenFullReceipt(t *testing.T) {
	ctx := context.Background()
	svc, catalog := newTestLedger(t)
	order := placedOrder(t, svc, catalog, 10)

	got, err := svc.Receive(ctx, order.ID, 0, 5)
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyReceived, got.Status)
	require.Equal(t, 5, got.Lines[0].Received)

	item, err := catalog.Get(ctx, "MLK-1")
	require.NoError(t, err)
	require.Equal(t, 7, item.Quantity)

	got, err = svc.Receive(ctx, order.ID, 0, 5)
	require.NoError(t, err)
	require.Equal(t, StatusReceived, got.Status)

	item, _ = catalog.Get(ctx, "MLK-1")
	require.Equal(t, 12, item.Quantity)
}

func TestReceiveClampsToOutstanding(t *testing.T) {
	ctx := context.Background()
	svc, catalog := newTestLedger(t)
	order := placedOrder(t, svc, catalog, 4)

	got, err := svc.Receive(ctx, order.ID, 0, 99)
	require.NoError(t, err)
	require.Equal(t, StatusReceived, got.Status)
	require.Equal(t, 4, got.Lines[0].Received)

	item, _ := catalog.Get(ctx, "MLK-1")
	require.Equal(t, 6, item.Quantity)

	// A fully received order refuses further receipts.
	_, err = svc.Receive(ctx, order.ID, 0, 1)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestReceiveGuards(t *testing.T) {
	ctx := context.Background()
	svc, catalog := newTestLedger(t)

	order, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	item, _ := catalog.Get(ctx, "MLK-1")
	_, err = svc.AddLine(ctx, order.ID, item, 3, 2.50)
	require.NoError(t, err)

	// Pending orders cannot receive.
	_, err = svc.Receive(ctx, order.ID, 0, 1)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.Place(ctx, order.ID)
	require.NoError(t, err)
	_, err = svc.Receive(ctx, order.ID, 5, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Receive(ctx, order.ID, 0, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCancelOnlyBeforeReceipts(t *testing.T) {
	ctx := context.Background()
	svc, catalog := newTestLedger(t)
	order := placedOrder(t, svc, catalog, 10)

	_, err := svc.Receive(ctx, order.ID, 0, 1)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	fresh, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	got, err := svc.Cancel(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
}

func TestPlaceRequiresLines(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLedger(t)

	order, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	_, err = svc.Place(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDuplicateSKULineIsAllowed(t *testing.T) {
	ctx := context.Background()
	svc, catalog := newTestLedger(t)

	order, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	item, _ := catalog.Get(ctx, "MLK-1")
	_, err = svc.AddLine(ctx, order.ID, item, 2, 2.50)
	require.NoError(t, err)
	got, err := svc.AddLine(ctx, order.ID, item, 3, 2.40)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	require.InDelta(t, 2*2.50+3*2.40, got.Total(), 1e-9)
}

func TestByStatusAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc, catalog := newTestLedger(t)

	order := placedOrder(t, svc, catalog, 10)
	_, err := svc.Receive(ctx, order.ID, 0, 4)
	require.NoError(t, err)

	pending, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)

	require.Len(t, svc.ByStatus(ctx, StatusPartiallyReceived), 1)
	require.Len(t, svc.ByStatus(ctx, StatusPending), 1)

	require.NoError(t, svc.Save(ctx, dir))

	reloaded := NewService(catalog, suppliers.NewDirectory(nil), nil, nil)
	require.NoError(t, reloaded.Load(ctx, dir))

	got, err := reloaded.ByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyReceived, got.Status)
	require.Equal(t, 4, got.Lines[0].Received)
	require.InDelta(t, 25.00, got.Total(), 1e-9)

	// Unlike sales, pending orders survive a restart.
	_, err = reloaded.ByID(ctx, pending.ID)
	require.NoError(t, err)
}

func receiveCount(t *testing.T, m *observability.Metrics, result string) float64 {
	t.Helper()
	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "stockpile_ledger_operations_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["module"] == "procurement" && labels["op"] == "receive" && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestReceiveWithMissingCatalogSKUCountsOnce(t *testing.T) {
	ctx := context.Background()
	catalog := inventory.NewCatalog(nil, nil)
	directory := suppliers.NewDirectory(nil)
	require.NoError(t, directory.Add(ctx, suppliers.Supplier{SupplierID: "SUP-1", Name: "Dairy Farm"}))
	metrics := observability.NewMetrics()
	svc := NewService(catalog, directory, nil, metrics)

	order, err := svc.Create(ctx, "SUP-1")
	require.NoError(t, err)
	ghost := inventory.StockItem{SKU: "GONE-1", Name: "Discontinued"}
	_, err = svc.AddLine(ctx, order.ID, ghost, 3, 1.00)
	require.NoError(t, err)
	_, err = svc.Place(ctx, order.ID)
	require.NoError(t, err)

	// The receipt stands even though the catalog no longer has the SKU,
	// and the outcome is counted exactly once.
	got, err := svc.Receive(ctx, order.ID, 0, 3)
	require.NoError(t, err)
	require.Equal(t, StatusReceived, got.Status)
	require.Equal(t, 3, got.Lines[0].Received)

	require.Equal(t, 1.0, receiveCount(t, metrics, "unbooked"))
	require.Equal(t, 0.0, receiveCount(t, metrics, "ok"))
}
