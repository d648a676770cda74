package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

func testItem(sku string, qty int, price float64) StockItem {
	return StockItem{
		SKU:        sku,
		Name:       "Item " + sku,
		Category:   "General",
		Quantity:   qty,
		Price:      price,
		SupplierID: "SUP001",
		Status:     ItemStatusActive,
	}
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)

	require.NoError(t, cat.Create(ctx, testItem("SKU1", 10, 5)))
	err := cat.Create(ctx, testItem("SKU1", 1, 1))
	require.ErrorIs(t, err, shared.ErrDuplicateKey)
}

func TestCreateValidatesFields(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)

	err := cat.Create(ctx, StockItem{SKU: "", Name: "x", Quantity: 1, Price: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	err = cat.Create(ctx, StockItem{SKU: "SKU1", Name: "x", Quantity: -1, Price: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	err = cat.Create(ctx, StockItem{SKU: "SKU1", Name: "x", Quantity: 1, Price: -0.5})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestApplyDeltaNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)
	require.NoError(t, cat.Create(ctx, testItem("SKU1", 10, 5)))

	require.NoError(t, cat.ApplyDelta(ctx, "SKU1", -4))
	item, err := cat.Get(ctx, "SKU1")
	require.NoError(t, err)
	require.Equal(t, 6, item.Quantity)

	err = cat.ApplyDelta(ctx, "SKU1", -7)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	// The failed delta must be a no-op, not a partial apply.
	item, err = cat.Get(ctx, "SKU1")
	require.NoError(t, err)
	require.Equal(t, 6, item.Quantity)

	err = cat.ApplyDelta(ctx, "NOPE", 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReadsAreDefensiveCopies(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)
	require.NoError(t, cat.Create(ctx, testItem("SKU1", 10, 5)))

	item, err := cat.Get(ctx, "SKU1")
	require.NoError(t, err)
	item.Quantity = 999

	stored, err := cat.Get(ctx, "SKU1")
	require.NoError(t, err)
	require.Equal(t, 10, stored.Quantity)
}

func TestReplaceGuardsSKU(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)
	require.NoError(t, cat.Create(ctx, testItem("SKU1", 10, 5)))

	err := cat.Replace(ctx, "SKU1", testItem("SKU2", 10, 5))
	require.ErrorIs(t, err, shared.ErrValidation)

	err = cat.Replace(ctx, "SKU9", testItem("SKU9", 10, 5))
	require.ErrorIs(t, err, shared.ErrNotFound)

	updated := testItem("SKU1", 10, 7.25)
	updated.Name = "Renamed"
	require.NoError(t, cat.Replace(ctx, "SKU1", updated))
	got, err := cat.Get(ctx, "SKU1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, 7.25, got.Price)
}

func TestSearchMatchesSKUNameCategory(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)
	apple := StockItem{SKU: "FRT-01", Name: "Red Apple", Category: "Fruit", Quantity: 5, Price: 1, Status: ItemStatusActive}
	milk := StockItem{SKU: "DRY-01", Name: "Whole Milk", Category: "Dairy", Quantity: 5, Price: 1, Status: ItemStatusActive}
	require.NoError(t, cat.Create(ctx, apple))
	require.NoError(t, cat.Create(ctx, milk))

	require.Len(t, cat.Search(ctx, "apple"), 1)
	require.Len(t, cat.Search(ctx, "dry-"), 1)
	require.Len(t, cat.Search(ctx, "DAIRY"), 1)
	require.Len(t, cat.Search(ctx, ""), 2)
	require.Empty(t, cat.Search(ctx, "zzz"))
}

func TestLowStockAndTotalValue(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(nil, nil)
	require.NoError(t, cat.Create(ctx, testItem("SKU1", 2, 3)))
	require.NoError(t, cat.Create(ctx, testItem("SKU2", 10, 1.5)))

	low := cat.LowStock(ctx, 2)
	require.Len(t, low, 1)
	require.Equal(t, "SKU1", low[0].SKU)

	// Negative thresholds coerce to zero.
	require.Empty(t, cat.LowStock(ctx, -5))

	require.InDelta(t, 2*3+10*1.5, cat.TotalValue(ctx), 0.001)
}

func TestCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cat := NewCatalog(nil, nil)

	bread := StockItem{SKU: "BKY-01", Name: "Bread, \"Whole Wheat\"", Category: "Bakery", Quantity: 30, Price: 2.75, SupplierID: "SUP003", Status: ItemStatusActive}
	require.NoError(t, cat.Create(ctx, bread))
	require.NoError(t, cat.Create(ctx, testItem("SKU1", 10, 5)))
	require.NoError(t, cat.Save(ctx, dir))

	reloaded := NewCatalog(nil, nil)
	require.NoError(t, reloaded.Load(ctx, dir))
	require.Len(t, reloaded.All(ctx), 2)

	got, err := reloaded.Get(ctx, "BKY-01")
	require.NoError(t, err)
	require.Equal(t, bread, got)
}

func TestLoadDefaultsUnknownStatusToInactive(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	content := "SKU,Name,Category,Quantity,Price,SupplierID,Status\n" +
		"SKU1,Banana,Fruit,50,0.30,SUP002,Discontinued\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ItemsFile), []byte(content), 0o644))

	cat := NewCatalog(nil, nil)
	require.NoError(t, cat.Load(ctx, dir))
	item, err := cat.Get(ctx, "SKU1")
	require.NoError(t, err)
	require.Equal(t, ItemStatusInactive, item.Status)
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	content := "SKU,Name,Category,Quantity,Price,SupplierID,Status\n" +
		"SKU1,Apple,Fruit,ten,0.30,SUP002,Active\n" +
		"SKU2,Pear,Fruit,4\n" +
		"SKU3,Plum,Fruit,4,0.40,SUP002,Active\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ItemsFile), []byte(content), 0o644))

	cat := NewCatalog(nil, nil)
	require.NoError(t, cat.Load(ctx, dir))
	require.Len(t, cat.All(ctx), 1)
}
