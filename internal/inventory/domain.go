package inventory

// ItemStatus enumerates the lifecycle states of a catalog item.
type ItemStatus string

const (
	// ItemStatusActive marks an item as sellable.
	ItemStatusActive ItemStatus = "Active"
	// ItemStatusInactive marks an item as withdrawn from sale.
	ItemStatusInactive ItemStatus = "Inactive"
)

// StockItem is one stock-keeping unit. The SKU is immutable after creation
// and quantity only changes through Catalog.ApplyDelta.
type StockItem struct {
	SKU        string  `validate:"required"`
	Name       string  `validate:"required"`
	Category   string
	Quantity   int     `validate:"gte=0"`
	Price      float64 `validate:"gte=0"`
	SupplierID string
	Status     ItemStatus
}

// Subtotal returns the stock value of this item.
func (i StockItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}
