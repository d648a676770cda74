package procurement

import "time"

// Status enumerates the purchase order lifecycle. "Partially Received" is
// spelled with a space because that exact value lives in the data files.
type Status string

const (
	StatusPending           Status = "Pending"
	StatusPlaced            Status = "Placed"
	StatusPartiallyReceived Status = "Partially Received"
	StatusReceived          Status = "Received"
	StatusCancelled         Status = "Cancelled"
)

// OrderLine is one ordered item. Received tracks cumulative receipts and
// never exceeds Ordered.
type OrderLine struct {
	SKU      string
	Name     string
	Ordered  int
	Received int
	UnitCost float64
}

// Remaining is the quantity still outstanding on this line.
func (l OrderLine) Remaining() int {
	return l.Ordered - l.Received
}

// Subtotal returns the ordered quantity times unit cost.
func (l OrderLine) Subtotal() float64 {
	return float64(l.Ordered) * l.UnitCost
}

// Order is one purchase order: a header plus its lines.
type Order struct {
	ID         string
	SupplierID string
	Date       time.Time
	Status     Status
	Lines      []OrderLine
}

// Total is the order's derived total cost, always recomputed from lines.
func (o Order) Total() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.Subtotal()
	}
	return total
}

func (o *Order) snapshot() Order {
	out := *o
	out.Lines = append([]OrderLine(nil), o.Lines...)
	return out
}

// LineInput carries the mutable parts of an order line.
type LineInput struct {
	Quantity int     `validate:"gt=0"`
	UnitCost float64 `validate:"gte=0"`
}
