package suppliers

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/stockpile-ims/stockpile/internal/platform/flatfile"
)

// SuppliersFile is the directory's file name under the data directory.
const SuppliersFile = "suppliers.csv"

const suppliersHeader = "supplierID,name,contactInfo"

// Load replaces the in-memory directory with the contents of suppliers.csv.
func (d *Directory) Load(ctx context.Context, dataDir string) error {
	table := flatfile.NewTable(filepath.Join(dataDir, SuppliersFile), suppliersHeader, d.logger)
	records, err := table.Load(ctx)
	if err != nil {
		d.suppliers = make(map[string]Supplier)
		return err
	}
	loaded := make(map[string]Supplier, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			d.logger.Warn("skipping malformed supplier row", slog.Int("fields", len(rec)))
			continue
		}
		s := Supplier{
			SupplierID:  flatfile.Unescape(rec[0]),
			Name:        flatfile.Unescape(rec[1]),
			ContactInfo: flatfile.Unescape(rec[2]),
		}
		loaded[s.SupplierID] = s
	}
	d.suppliers = loaded
	d.logger.Info("suppliers loaded", slog.Int("count", len(loaded)))
	return nil
}

// Save rewrites suppliers.csv from the in-memory directory.
func (d *Directory) Save(ctx context.Context, dataDir string) error {
	table := flatfile.NewTable(filepath.Join(dataDir, SuppliersFile), suppliersHeader, d.logger)
	all := d.All(ctx)
	records := make([][]string, 0, len(all))
	for _, s := range all {
		records = append(records, []string{s.SupplierID, s.Name, s.ContactInfo})
	}
	if err := table.Save(ctx, records); err != nil {
		return err
	}
	d.logger.Info("suppliers saved", slog.Int("count", len(records)))
	return nil
}
