package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

func TestAddGetRemove(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(nil)

	require.NoError(t, dir.Add(ctx, Supplier{SupplierID: "SUP001", Name: "Fresh Produce Co.", ContactInfo: "orders@freshproduce.co"}))

	err := dir.Add(ctx, Supplier{SupplierID: "SUP001", Name: "Other"})
	require.ErrorIs(t, err, shared.ErrDuplicateKey)

	err = dir.Add(ctx, Supplier{SupplierID: "", Name: "Nameless"})
	require.ErrorIs(t, err, shared.ErrValidation)

	got, err := dir.Get(ctx, "SUP001")
	require.NoError(t, err)
	require.Equal(t, "Fresh Produce Co.", got.Name)

	require.NoError(t, dir.Remove(ctx, "SUP001"))
	_, err = dir.Get(ctx, "SUP001")
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, dir.Remove(ctx, "SUP001"), shared.ErrNotFound)
}

func TestSupplierRoundTripWithEscapedFields(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	dir := NewDirectory(nil)

	tricky := Supplier{
		SupplierID:  "SUP-C",
		Name:        "Gadget Galaxy, \"Best Gadgets\"",
		ContactInfo: "support@gadgetgalaxy.net, sales@gadgetgalaxy.net",
	}
	require.NoError(t, dir.Add(ctx, tricky))
	require.NoError(t, dir.Add(ctx, Supplier{SupplierID: "SUP-A", Name: "Office Solutions Ltd.", ContactInfo: "contact@officesolutions.com"}))
	require.NoError(t, dir.Save(ctx, dataDir))

	reloaded := NewDirectory(nil)
	require.NoError(t, reloaded.Load(ctx, dataDir))
	require.Len(t, reloaded.All(ctx), 2)

	got, err := reloaded.Get(ctx, "SUP-C")
	require.NoError(t, err)
	require.Equal(t, tricky, got)
}
