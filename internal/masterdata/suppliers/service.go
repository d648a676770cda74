package suppliers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

// Directory owns the supplier catalog.
type Directory struct {
	suppliers map[string]Supplier
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewDirectory builds an empty directory. Call Load to hydrate it from disk.
func NewDirectory(logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		suppliers: make(map[string]Supplier),
		validate:  validator.New(),
		logger:    logger,
	}
}

// Add registers a new supplier. The id must be unused.
func (d *Directory) Add(ctx context.Context, supplier Supplier) error {
	if err := d.validate.Struct(supplier); err != nil {
		return fmt.Errorf("suppliers: add %s: %w: %v", supplier.SupplierID, shared.ErrValidation, err)
	}
	if _, ok := d.suppliers[supplier.SupplierID]; ok {
		return fmt.Errorf("suppliers: supplier %s: %w", supplier.SupplierID, shared.ErrDuplicateKey)
	}
	d.suppliers[supplier.SupplierID] = supplier
	d.logger.Info("supplier added", slog.String("supplier_id", supplier.SupplierID), slog.String("name", supplier.Name))
	return nil
}

// Get returns the supplier for an id.
func (d *Directory) Get(ctx context.Context, id string) (Supplier, error) {
	supplier, ok := d.suppliers[id]
	if !ok {
		return Supplier{}, fmt.Errorf("suppliers: supplier %s: %w", id, shared.ErrNotFound)
	}
	return supplier, nil
}

// Remove deletes a supplier record.
func (d *Directory) Remove(ctx context.Context, id string) error {
	if _, ok := d.suppliers[id]; !ok {
		return fmt.Errorf("suppliers: supplier %s: %w", id, shared.ErrNotFound)
	}
	delete(d.suppliers, id)
	d.logger.Info("supplier removed", slog.String("supplier_id", id))
	return nil
}

// All lists every supplier ordered by id.
func (d *Directory) All(ctx context.Context) []Supplier {
	out := make([]Supplier, 0, len(d.suppliers))
	for _, s := range d.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplierID < out[j].SupplierID })
	return out
}
