package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockpile-ims/stockpile/internal/inventory"
	"github.com/stockpile-ims/stockpile/internal/masterdata/suppliers"
	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// StockPort is the slice of the stock catalog receipts need.
type StockPort interface {
	ApplyDelta(ctx context.Context, sku string, delta int) error
}

// SupplierPort resolves supplier ids when an order is created.
type SupplierPort interface {
	Get(ctx context.Context, id string) (suppliers.Supplier, error)
}

// Service is the purchase order ledger.
type Service struct {
	orders    map[string]*Order
	stock     StockPort
	suppliers SupplierPort
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewService(stock StockPort, suppliers SupplierPort, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		orders:    make(map[string]*Order),
		stock:     stock,
		suppliers: suppliers,
		validate:  validator.New(),
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Create opens a new pending order against a known supplier.
func (s *Service) Create(ctx context.Context, supplierID string) (Order, error) {
	if _, err := s.suppliers.Get(ctx, supplierID); err != nil {
		s.metrics.ObserveOp("procurement", "create", "error")
		return Order{}, fmt.Errorf("procurement: create order: %w", err)
	}
	now := s.now().UTC()
	order := &Order{
		ID:         shared.DocumentID("PO", now),
		SupplierID: supplierID,
		Date:       now,
		Status:     StatusPending,
	}
	s.orders[order.ID] = order
	s.logger.InfoContext(ctx, "purchase order created", "order_id", order.ID, "supplier_id", supplierID)
	s.metrics.ObserveOp("procurement", "create", "ok")
	return order.snapshot(), nil
}

// AddLine appends a line to a pending order. A second line for the same
// SKU is allowed; it only gets a warning.
func (s *Service) AddLine(ctx context.Context, orderID string, item inventory.StockItem, qty int, unitCost float64) (Order, error) {
	order, err := s.inStatus(orderID, StatusPending)
	if err != nil {
		return Order{}, err
	}
	if err := s.validateLine(qty, unitCost); err != nil {
		return Order{}, err
	}
	for _, l := range order.Lines {
		if l.SKU == item.SKU {
			s.logger.WarnContext(ctx, "order already has a line for this item", "order_id", orderID, "sku", item.SKU)
			break
		}
	}
	order.Lines = append(order.Lines, OrderLine{
		SKU:      item.SKU,
		Name:     item.Name,
		Ordered:  qty,
		UnitCost: unitCost,
	})
	s.metrics.ObserveOp("procurement", "add_line", "ok")
	return order.snapshot(), nil
}

// RemoveLine deletes the line at index from a pending order.
func (s *Service) RemoveLine(ctx context.Context, orderID string, index int) (Order, error) {
	order, err := s.inStatus(orderID, StatusPending)
	if err != nil {
		return Order{}, err
	}
	if index < 0 || index >= len(order.Lines) {
		return Order{}, fmt.Errorf("procurement: line %d of order %s: %w", index, orderID, shared.ErrNotFound)
	}
	order.Lines = append(order.Lines[:index], order.Lines[index+1:]...)
	return order.snapshot(), nil
}

// Place moves a pending order to Placed, freezing its lines.
func (s *Service) Place(ctx context.Context, orderID string) (Order, error) {
	order, err := s.inStatus(orderID, StatusPending)
	if err != nil {
		return Order{}, err
	}
	if len(order.Lines) == 0 {
		return Order{}, fmt.Errorf("procurement: place %s: order has no lines: %w", orderID, shared.ErrValidation)
	}
	order.Status = StatusPlaced
	s.logger.InfoContext(ctx, "purchase order placed", "order_id", orderID, "total", order.Total())
	s.metrics.ObserveOp("procurement", "place", "ok")
	return order.snapshot(), nil
}

// Receive records a receipt against the line at index. The quantity is
// clamped to what is still outstanding, stock goes up by the clamped
// amount, and the order status is rederived from its lines.
func (s *Service) Receive(ctx context.Context, orderID string, index, qty int) (Order, error) {
	order, err := s.inStatus(orderID, StatusPlaced, StatusPartiallyReceived)
	if err != nil {
		return Order{}, err
	}
	if index < 0 || index >= len(order.Lines) {
		return Order{}, fmt.Errorf("procurement: line %d of order %s: %w", index, orderID, shared.ErrNotFound)
	}
	if qty <= 0 {
		return Order{}, fmt.Errorf("procurement: receive %s: quantity must be positive: %w", orderID, shared.ErrValidation)
	}
	line := &order.Lines[index]
	actual := qty
	if remaining := line.Remaining(); actual > remaining {
		s.logger.WarnContext(ctx, "receipt clamped to outstanding quantity",
			"order_id", orderID, "sku", line.SKU, "requested", qty, "remaining", remaining)
		actual = remaining
	}
	if actual == 0 {
		return order.snapshot(), nil
	}
	line.Received += actual
	result := "ok"
	if err := s.stock.ApplyDelta(ctx, line.SKU, actual); err != nil {
		// The receipt stands either way; the catalog discrepancy is for
		// the operator to reconcile.
		s.logger.ErrorContext(ctx, "received stock could not be booked into catalog",
			"order_id", orderID, "sku", line.SKU, "quantity", actual, "error", err)
		result = "unbooked"
	}

	order.Status = deriveStatus(order)
	s.logger.InfoContext(ctx, "purchase order receipt recorded",
		"order_id", orderID, "sku", line.SKU, "quantity", actual, "status", order.Status)
	s.metrics.ObserveOp("procurement", "receive", result)
	return order.snapshot(), nil
}

// Cancel marks a not-yet-received order as cancelled. Orders with any
// receipts cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) (Order, error) {
	order, err := s.inStatus(orderID, StatusPending, StatusPlaced)
	if err != nil {
		return Order{}, err
	}
	order.Status = StatusCancelled
	s.logger.InfoContext(ctx, "purchase order cancelled", "order_id", orderID)
	s.metrics.ObserveOp("procurement", "cancel", "ok")
	return order.snapshot(), nil
}

// ByID returns the order with the given id.
func (s *Service) ByID(ctx context.Context, orderID string) (Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("procurement: order %s: %w", orderID, shared.ErrNotFound)
	}
	return order.snapshot(), nil
}

// All returns every order sorted by id.
func (s *Service) All(ctx context.Context) []Order {
	out := make([]Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByStatus returns orders in the given status sorted by id.
func (s *Service) ByStatus(ctx context.Context, status Status) []Order {
	var out []Order
	for _, order := range s.orders {
		if order.Status == status {
			out = append(out, order.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) inStatus(orderID string, allowed ...Status) (*Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("procurement: order %s: %w", orderID, shared.ErrNotFound)
	}
	for _, st := range allowed {
		if order.Status == st {
			return order, nil
		}
	}
	return nil, fmt.Errorf("procurement: order %s is %s: %w", orderID, order.Status, shared.ErrInvalidState)
}

func (s *Service) validateLine(qty int, cost float64) error {
	if err := s.validate.Struct(LineInput{Quantity: qty, UnitCost: cost}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("procurement: invalid line: %s: %w", verrs[0].Field(), shared.ErrValidation)
		}
		return fmt.Errorf("procurement: invalid line: %w", shared.ErrValidation)
	}
	return nil
}

// deriveStatus recomputes the receipt status from line state. Fully
// received only counts when the order actually has lines.
func deriveStatus(order *Order) Status {
	if len(order.Lines) == 0 {
		return order.Status
	}
	full := true
	any := false
	for _, l := range order.Lines {
		if l.Received > 0 {
			any = true
		}
		if l.Received < l.Ordered {
			full = false
		}
	}
	switch {
	case full:
		return StatusReceived
	case any:
		return StatusPartiallyReceived
	default:
		return order.Status
	}
}
