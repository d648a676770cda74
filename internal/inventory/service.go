package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// Catalog owns every StockItem. All quantity mutation funnels through
// ApplyDelta; reads hand out value copies, so callers can never reach the
// internal records.
type Catalog struct {
	items    map[string]StockItem
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewCatalog builds an empty catalog. Call Load to hydrate it from disk.
func NewCatalog(logger *slog.Logger, metrics *observability.Metrics) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		items:    make(map[string]StockItem),
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Get returns the item for a sku.
func (c *Catalog) Get(ctx context.Context, sku string) (StockItem, error) {
	item, ok := c.items[sku]
	if !ok {
		return StockItem{}, fmt.Errorf("inventory: item %s: %w", sku, shared.ErrNotFound)
	}
	return item, nil
}

// Create adds a new item. The sku must be unused.
func (c *Catalog) Create(ctx context.Context, item StockItem) error {
	item.Status = c.normalizeStatus(item.SKU, item.Status)
	if err := c.validate.Struct(item); err != nil {
		return fmt.Errorf("inventory: create %s: %w: %v", item.SKU, shared.ErrValidation, err)
	}
	if _, ok := c.items[item.SKU]; ok {
		return fmt.Errorf("inventory: item %s: %w", item.SKU, shared.ErrDuplicateKey)
	}
	c.items[item.SKU] = item
	c.metrics.ObserveOp("inventory", "create", "ok")
	c.logger.Info("item created", slog.String("sku", item.SKU), slog.String("name", item.Name))
	return nil
}

// Replace swaps the stored record for an existing sku. The replacement must
// carry the same sku; replacing is the only way to edit name, category,
// price, supplier, or status.
func (c *Catalog) Replace(ctx context.Context, sku string, item StockItem) error {
	if sku != item.SKU {
		return fmt.Errorf("inventory: replace %s: sku mismatch with %s: %w", sku, item.SKU, shared.ErrValidation)
	}
	item.Status = c.normalizeStatus(item.SKU, item.Status)
	if err := c.validate.Struct(item); err != nil {
		return fmt.Errorf("inventory: replace %s: %w: %v", sku, shared.ErrValidation, err)
	}
	if _, ok := c.items[sku]; !ok {
		return fmt.Errorf("inventory: item %s: %w", sku, shared.ErrNotFound)
	}
	c.items[sku] = item
	c.logger.Info("item replaced", slog.String("sku", sku))
	return nil
}

// ApplyDelta adjusts an item's quantity by a signed amount. A delta that
// would drive the quantity negative is dropped entirely: the stored quantity
// is untouched and an error comes back.
func (c *Catalog) ApplyDelta(ctx context.Context, sku string, delta int) error {
	item, ok := c.items[sku]
	if !ok {
		c.metrics.ObserveOp("inventory", "apply_delta", "error")
		return fmt.Errorf("inventory: item %s: %w", sku, shared.ErrNotFound)
	}
	next := item.Quantity + delta
	if next < 0 {
		c.logger.Error("stock delta rejected",
			slog.String("sku", sku), slog.Int("delta", delta), slog.Int("quantity", item.Quantity))
		c.metrics.ObserveOp("inventory", "apply_delta", "rejected")
		return fmt.Errorf("inventory: item %s: delta %d exceeds stock %d: %w",
			sku, delta, item.Quantity, shared.ErrInsufficientStock)
	}
	item.Quantity = next
	c.items[sku] = item
	c.metrics.ObserveOp("inventory", "apply_delta", "ok")
	c.metrics.ObserveMovement(delta)
	return nil
}

// Remove deletes an item from the catalog.
func (c *Catalog) Remove(ctx context.Context, sku string) error {
	if _, ok := c.items[sku]; !ok {
		return fmt.Errorf("inventory: item %s: %w", sku, shared.ErrNotFound)
	}
	delete(c.items, sku)
	c.logger.Info("item removed", slog.String("sku", sku))
	return nil
}

// All lists every item ordered by sku.
func (c *Catalog) All(ctx context.Context) []StockItem {
	out := make([]StockItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// Search matches text case-insensitively against sku, name, and category.
// Empty text returns everything.
func (c *Catalog) Search(ctx context.Context, text string) []StockItem {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return c.All(ctx)
	}
	var out []StockItem
	for _, item := range c.All(ctx) {
		if strings.Contains(strings.ToLower(item.SKU), needle) ||
			strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Category), needle) {
			out = append(out, item)
		}
	}
	return out
}

// LowStock lists items at or below a threshold. Negative thresholds coerce
// to zero with a warning.
func (c *Catalog) LowStock(ctx context.Context, threshold int) []StockItem {
	if threshold < 0 {
		c.logger.Warn("negative low-stock threshold coerced to 0", slog.Int("threshold", threshold))
		threshold = 0
	}
	var out []StockItem
	for _, item := range c.All(ctx) {
		if item.Quantity <= threshold {
			out = append(out, item)
		}
	}
	return out
}

// TotalValue sums price times quantity across the catalog.
func (c *Catalog) TotalValue(ctx context.Context) float64 {
	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

func (c *Catalog) normalizeStatus(sku string, status ItemStatus) ItemStatus {
	switch status {
	case ItemStatusActive, ItemStatusInactive:
		return status
	case "":
		return ItemStatusActive
	default:
		c.logger.Warn("unrecognized item status, defaulting to Inactive",
			slog.String("sku", sku), slog.String("status", string(status)))
		return ItemStatusInactive
	}
}
