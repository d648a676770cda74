package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/stockpile-ims/stockpile/internal/platform/flatfile"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// ItemsFile is the catalog's file name under the data directory.
const ItemsFile = "items.csv"

const itemsHeader = "SKU,Name,Category,Quantity,Price,SupplierID,Status"

// Load replaces the in-memory catalog with the contents of items.csv. A
// missing or unreadable file leaves the catalog empty; rows that fail to
// parse are skipped with a warning.
func (c *Catalog) Load(ctx context.Context, dataDir string) error {
	table := flatfile.NewTable(filepath.Join(dataDir, ItemsFile), itemsHeader, c.logger)
	records, err := table.Load(ctx)
	if err != nil {
		c.metrics.ObservePersistError(ItemsFile)
		c.items = make(map[string]StockItem)
		return err
	}
	items := make(map[string]StockItem, len(records))
	for _, rec := range records {
		item, err := c.parseItem(rec)
		if err != nil {
			c.logger.Warn("skipping invalid item row", slog.Any("error", err))
			continue
		}
		items[item.SKU] = item
	}
	c.items = items
	c.logger.Info("items loaded", slog.Int("count", len(items)))
	return nil
}

// Save rewrites items.csv from the in-memory catalog.
func (c *Catalog) Save(ctx context.Context, dataDir string) error {
	table := flatfile.NewTable(filepath.Join(dataDir, ItemsFile), itemsHeader, c.logger)
	items := c.All(ctx)
	records := make([][]string, 0, len(items))
	for _, item := range items {
		records = append(records, []string{
			item.SKU,
			item.Name,
			item.Category,
			strconv.Itoa(item.Quantity),
			shared.FormatAmount(item.Price),
			item.SupplierID,
			string(item.Status),
		})
	}
	if err := table.Save(ctx, records); err != nil {
		c.metrics.ObservePersistError(ItemsFile)
		return err
	}
	c.logger.Info("items saved", slog.Int("count", len(records)))
	return nil
}

func (c *Catalog) parseItem(parts []string) (StockItem, error) {
	if len(parts) < 7 {
		return StockItem{}, fmt.Errorf("inventory: item row has %d fields, want 7", len(parts))
	}
	sku := flatfile.Unescape(parts[0])
	quantity, err := strconv.Atoi(flatfile.Unescape(parts[3]))
	if err != nil {
		return StockItem{}, fmt.Errorf("inventory: item %s: bad quantity: %w", sku, err)
	}
	if quantity < 0 {
		c.logger.Warn("negative stored quantity floored to 0", slog.String("sku", sku), slog.Int("quantity", quantity))
		quantity = 0
	}
	price, err := shared.ParseAmount(flatfile.Unescape(parts[4]))
	if err != nil {
		return StockItem{}, fmt.Errorf("inventory: item %s: bad price: %w", sku, err)
	}
	if price < 0 {
		c.logger.Warn("negative stored price floored to 0", slog.String("sku", sku), slog.Float64("price", price))
		price = 0
	}
	status := ItemStatus(flatfile.Unescape(parts[6]))
	if status != ItemStatusActive && status != ItemStatusInactive {
		c.logger.Warn("unknown stored status, defaulting to Inactive",
			slog.String("sku", sku), slog.String("status", string(status)))
		status = ItemStatusInactive
	}
	return StockItem{
		SKU:        sku,
		Name:       flatfile.Unescape(parts[1]),
		Category:   flatfile.Unescape(parts[2]),
		Quantity:   quantity,
		Price:      price,
		SupplierID: flatfile.Unescape(parts[5]),
		Status:     status,
	}, nil
}
