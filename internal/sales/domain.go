package sales

import "time"

// Status enumerates the sale lifecycle. Pending sales are mutable and
// in-memory only; Completed and Cancelled are terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// SaleLine is one sold item. Name and unit price are snapshots taken when
// the line was added; later catalog edits never reach back into a sale.
type SaleLine struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice float64
}

// Subtotal returns quantity times unit price.
func (l SaleLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Sale is one sales document: a header plus its ordered lines.
type Sale struct {
	ID     string
	Date   time.Time
	Status Status
	Lines  []SaleLine

	// carriedTotal holds the persisted header total for sales whose line
	// rows were not found at load time.
	carriedTotal float64
}

// Total is the sale's derived total amount, always recomputed from lines.
// A sale loaded without line rows falls back to its stored header total.
func (s Sale) Total() float64 {
	if len(s.Lines) == 0 {
		return s.carriedTotal
	}
	var total float64
	for _, l := range s.Lines {
		total += l.Subtotal()
	}
	return total
}

func (s *Sale) snapshot() Sale {
	out := *s
	out.Lines = append([]SaleLine(nil), s.Lines...)
	return out
}

// LineInput carries the mutable parts of a sale line.
type LineInput struct {
	Quantity  int     `validate:"gt=0"`
	UnitPrice float64 `validate:"gte=0"`
}
