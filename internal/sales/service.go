package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockpile-ims/stockpile/internal/inventory"
	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// StockPort is the slice of the stock catalog the sales ledger needs.
type StockPort interface {
	Get(ctx context.Context, sku string) (inventory.StockItem, error)
	ApplyDelta(ctx context.Context, sku string, delta int) error
}

// Service is the sales ledger. All documents are addressed by id; there is
// no ambient "current sale".
type Service struct {
	sales    map[string]*Sale
	stock    StockPort
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewService(stock StockPort, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sales:    make(map[string]*Sale),
		stock:    stock,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Open creates a new pending sale and returns it.
func (s *Service) Open(ctx context.Context) (Sale, error) {
	now := s.now().UTC()
	sale := &Sale{
		ID:     shared.DocumentID("SALE", now),
		Date:   now,
		Status: StatusPending,
	}
	s.sales[sale.ID] = sale
	s.logger.InfoContext(ctx, "sale opened", "sale_id", sale.ID)
	s.metrics.ObserveOp("sales", "open", "ok")
	return sale.snapshot(), nil
}

// AddLine appends a line to a pending sale. The item's name and price are
// snapshotted from the given catalog item unless price overrides it.
func (s *Service) AddLine(ctx context.Context, saleID string, item inventory.StockItem, qty int, price float64) (Sale, error) {
	sale, err := s.pending(saleID)
	if err != nil {
		return Sale{}, err
	}
	if err := s.validateLine(qty, price); err != nil {
		return Sale{}, err
	}
	sale.Lines = append(sale.Lines, SaleLine{
		SKU:       item.SKU,
		Name:      item.Name,
		Quantity:  qty,
		UnitPrice: price,
	})
	s.metrics.ObserveOp("sales", "add_line", "ok")
	return sale.snapshot(), nil
}

// UpdateLine replaces the quantity and unit price of the line at index.
func (s *Service) UpdateLine(ctx context.Context, saleID string, index, qty int, price float64) (Sale, error) {
	sale, err := s.pending(saleID)
	if err != nil {
		return Sale{}, err
	}
	if index < 0 || index >= len(sale.Lines) {
		return Sale{}, fmt.Errorf("sales: line %d of sale %s: %w", index, saleID, shared.ErrNotFound)
	}
	if err := s.validateLine(qty, price); err != nil {
		return Sale{}, err
	}
	sale.Lines[index].Quantity = qty
	sale.Lines[index].UnitPrice = price
	return sale.snapshot(), nil
}

// RemoveLine deletes the line at index from a pending sale.
func (s *Service) RemoveLine(ctx context.Context, saleID string, index int) (Sale, error) {
	sale, err := s.pending(saleID)
	if err != nil {
		return Sale{}, err
	}
	if index < 0 || index >= len(sale.Lines) {
		return Sale{}, fmt.Errorf("sales: line %d of sale %s: %w", index, saleID, shared.ErrNotFound)
	}
	sale.Lines = append(sale.Lines[:index], sale.Lines[index+1:]...)
	return sale.snapshot(), nil
}

// Finalize completes a pending sale. It first validates every line against
// current stock, building a per-SKU commit plan, and only then applies the
// deductions. A failed validation leaves both the sale and the catalog
// untouched.
func (s *Service) Finalize(ctx context.Context, saleID string) (Sale, error) {
	sale, err := s.pending(saleID)
	if err != nil {
		return Sale{}, err
	}
	if len(sale.Lines) == 0 {
		return Sale{}, fmt.Errorf("sales: finalize %s: sale has no lines: %w", saleID, shared.ErrValidation)
	}

	required := make(map[string]int)
	order := make([]string, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		if _, seen := required[l.SKU]; !seen {
			order = append(order, l.SKU)
		}
		required[l.SKU] += l.Quantity
	}
	for _, sku := range order {
		item, err := s.stock.Get(ctx, sku)
		if err != nil {
			s.metrics.ObserveOp("sales", "finalize", "error")
			return Sale{}, fmt.Errorf("sales: finalize %s: item %s: %w", saleID, sku, err)
		}
		if item.Quantity < required[sku] {
			s.logger.WarnContext(ctx, "insufficient stock for sale",
				"sale_id", saleID, "sku", sku, "have", item.Quantity, "need", required[sku])
			s.metrics.ObserveOp("sales", "finalize", "rejected")
			return Sale{}, fmt.Errorf("sales: finalize %s: item %s has %d of %d needed: %w",
				saleID, sku, item.Quantity, required[sku], shared.ErrInsufficientStock)
		}
	}
	for _, sku := range order {
		if err := s.stock.ApplyDelta(ctx, sku, -required[sku]); err != nil {
			// The plan was validated against the same catalog, so this
			// only happens on a concurrent external mutation.
			return Sale{}, fmt.Errorf("sales: finalize %s: %w", saleID, err)
		}
	}

	sale.Status = StatusCompleted
	sale.Date = s.now().UTC()
	s.logger.InfoContext(ctx, "sale completed",
		"sale_id", saleID, "lines", len(sale.Lines), "total", sale.Total())
	s.metrics.ObserveOp("sales", "finalize", "ok")
	return sale.snapshot(), nil
}

// Cancel marks a pending sale as cancelled. Stock is never touched because
// pending sales have not deducted anything yet.
func (s *Service) Cancel(ctx context.Context, saleID string) (Sale, error) {
	sale, err := s.pending(saleID)
	if err != nil {
		return Sale{}, err
	}
	sale.Status = StatusCancelled
	s.logger.InfoContext(ctx, "sale cancelled", "sale_id", saleID)
	s.metrics.ObserveOp("sales", "cancel", "ok")
	return sale.snapshot(), nil
}

// ByID returns the sale with the given id.
func (s *Service) ByID(ctx context.Context, saleID string) (Sale, error) {
	sale, ok := s.sales[saleID]
	if !ok {
		return Sale{}, fmt.Errorf("sales: sale %s: %w", saleID, shared.ErrNotFound)
	}
	return sale.snapshot(), nil
}

// All returns every sale ordered by id.
func (s *Service) All(ctx context.Context) []Sale {
	out := make([]Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, sale.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CompletedInRange returns completed sales whose UTC calendar date falls
// within [start, end], both inclusive. Only the date portion of the bounds
// is considered.
func (s *Service) CompletedInRange(ctx context.Context, start, end time.Time) ([]Sale, error) {
	from := dateOnly(start)
	to := dateOnly(end)
	if to.Before(from) {
		return nil, fmt.Errorf("sales: range end %s before start %s: %w",
			to.Format(time.DateOnly), from.Format(time.DateOnly), shared.ErrValidation)
	}
	var out []Sale
	for _, sale := range s.sales {
		if sale.Status != StatusCompleted {
			continue
		}
		day := dateOnly(sale.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, sale.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CompletedOn returns completed sales on a single UTC calendar date.
func (s *Service) CompletedOn(ctx context.Context, day time.Time) ([]Sale, error) {
	return s.CompletedInRange(ctx, day, day)
}

func (s *Service) pending(saleID string) (*Sale, error) {
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, fmt.Errorf("sales: sale %s: %w", saleID, shared.ErrNotFound)
	}
	if sale.Status != StatusPending {
		return nil, fmt.Errorf("sales: sale %s is %s: %w", saleID, sale.Status, shared.ErrInvalidState)
	}
	return sale, nil
}

func (s *Service) validateLine(qty int, price float64) error {
	if err := s.validate.Struct(LineInput{Quantity: qty, UnitPrice: price}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("sales: invalid line: %s: %w", verrs[0].Field(), shared.ErrValidation)
		}
		return fmt.Errorf("sales: invalid line: %w", shared.ErrValidation)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
