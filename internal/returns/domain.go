package returns

import "time"

// Status enumerates the return lifecycle. Pending returns are editable;
// Approved returns are waiting to be booked into stock; Completed and
// Rejected are terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusCompleted Status = "Completed"
	StatusRejected  Status = "Rejected"
)

// Condition classifies what came back. Only resellable units go back into
// the stock catalog.
type Condition string

const (
	ConditionResellable Condition = "Resellable"
	ConditionDamaged    Condition = "Damaged"
	ConditionDefective  Condition = "Defective"
)

// ReturnLine is one returned item. Name and unit price are snapshots from
// the original sale.
type ReturnLine struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice float64
	Condition Condition
	Reason    string
}

// Subtotal returns the refund amount for this line.
func (l ReturnLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// SalesReturn is one return document tied to an original completed sale.
type SalesReturn struct {
	ID             string
	OriginalSaleID string
	Date           time.Time
	Status         Status
	CustomerNotes  string
	Lines          []ReturnLine
}

// TotalRefund is the derived refund amount, always recomputed from lines.
func (r SalesReturn) TotalRefund() float64 {
	var total float64
	for _, l := range r.Lines {
		total += l.Subtotal()
	}
	return total
}

func (r *SalesReturn) snapshot() SalesReturn {
	out := *r
	out.Lines = append([]ReturnLine(nil), r.Lines...)
	return out
}

// LineInput carries a new return line. An empty condition defaults to
// Resellable before validation.
type LineInput struct {
	SKU       string    `validate:"required"`
	Name      string    `validate:"required"`
	Quantity  int       `validate:"gt=0"`
	UnitPrice float64   `validate:"gte=0"`
	Condition Condition `validate:"oneof=Resellable Damaged Defective"`
	Reason    string
}
