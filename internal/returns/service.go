package returns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/sales"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// StockPort restocks resellable units.
type StockPort interface {
	ApplyDelta(ctx context.Context, sku string, delta int) error
}

// SalesPort looks up the original sale a return refers to.
type SalesPort interface {
	ByID(ctx context.Context, saleID string) (sales.Sale, error)
}

// Service is the returns ledger.
type Service struct {
	returns  map[string]*SalesReturn
	stock    StockPort
	sales    SalesPort
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewService(stock StockPort, salesLedger SalesPort, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		returns:  make(map[string]*SalesReturn),
		stock:    stock,
		sales:    salesLedger,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Open creates a pending return against a completed sale. Anything else,
// a missing sale included, reads as not found: only completed sales exist
// as far as returns are concerned.
func (s *Service) Open(ctx context.Context, originalSaleID string) (SalesReturn, error) {
	sale, err := s.sales.ByID(ctx, originalSaleID)
	if err != nil {
		s.metrics.ObserveOp("returns", "open", "error")
		return SalesReturn{}, fmt.Errorf("returns: open against sale %s: %w", originalSaleID, err)
	}
	if sale.Status != sales.StatusCompleted {
		s.logger.WarnContext(ctx, "return refused, original sale not completed",
			"sale_id", originalSaleID, "status", sale.Status)
		s.metrics.ObserveOp("returns", "open", "rejected")
		return SalesReturn{}, fmt.Errorf("returns: no completed sale %s: %w", originalSaleID, shared.ErrNotFound)
	}
	now := s.now().UTC()
	ret := &SalesReturn{
		ID:             shared.DocumentID("RTN", now),
		OriginalSaleID: originalSaleID,
		Date:           now,
		Status:         StatusPending,
	}
	s.returns[ret.ID] = ret
	s.logger.InfoContext(ctx, "return opened", "return_id", ret.ID, "sale_id", originalSaleID)
	s.metrics.ObserveOp("returns", "open", "ok")
	return ret.snapshot(), nil
}

// AddLine appends a line to a pending return.
func (s *Service) AddLine(ctx context.Context, returnID string, input LineInput) (SalesReturn, error) {
	ret, err := s.inStatus(returnID, StatusPending)
	if err != nil {
		return SalesReturn{}, err
	}
	if input.Condition == "" {
		input.Condition = ConditionResellable
	}
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return SalesReturn{}, fmt.Errorf("returns: invalid line: %s: %w", verrs[0].Field(), shared.ErrValidation)
		}
		return SalesReturn{}, fmt.Errorf("returns: invalid line: %w", shared.ErrValidation)
	}
	ret.Lines = append(ret.Lines, ReturnLine{
		SKU:       input.SKU,
		Name:      input.Name,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		Condition: input.Condition,
		Reason:    input.Reason,
	})
	s.metrics.ObserveOp("returns", "add_line", "ok")
	return ret.snapshot(), nil
}

// RemoveLine deletes the line at index from a pending return.
func (s *Service) RemoveLine(ctx context.Context, returnID string, index int) (SalesReturn, error) {
	ret, err := s.inStatus(returnID, StatusPending)
	if err != nil {
		return SalesReturn{}, err
	}
	if index < 0 || index >= len(ret.Lines) {
		return SalesReturn{}, fmt.Errorf("returns: line %d of return %s: %w", index, returnID, shared.ErrNotFound)
	}
	ret.Lines = append(ret.Lines[:index], ret.Lines[index+1:]...)
	return ret.snapshot(), nil
}

// SetCustomerNotes replaces the free-form notes on a not-yet-terminal
// return.
func (s *Service) SetCustomerNotes(ctx context.Context, returnID, notes string) (SalesReturn, error) {
	ret, err := s.inStatus(returnID, StatusPending, StatusApproved)
	if err != nil {
		return SalesReturn{}, err
	}
	ret.CustomerNotes = notes
	return ret.snapshot(), nil
}

// Approve moves a pending return to Approved.
func (s *Service) Approve(ctx context.Context, returnID string) (SalesReturn, error) {
	ret, err := s.inStatus(returnID, StatusPending)
	if err != nil {
		return SalesReturn{}, err
	}
	if len(ret.Lines) == 0 {
		return SalesReturn{}, fmt.Errorf("returns: approve %s: return has no lines: %w", returnID, shared.ErrValidation)
	}
	ret.Status = StatusApproved
	s.logger.InfoContext(ctx, "return approved", "return_id", returnID, "refund", ret.TotalRefund())
	s.metrics.ObserveOp("returns", "approve", "ok")
	return ret.snapshot(), nil
}

// Reject terminally refuses a pending return.
func (s *Service) Reject(ctx context.Context, returnID string) (SalesReturn, error) {
	ret, err := s.inStatus(returnID, StatusPending)
	if err != nil {
		return SalesReturn{}, err
	}
	ret.Status = StatusRejected
	s.logger.InfoContext(ctx, "return rejected", "return_id", returnID)
	s.metrics.ObserveOp("returns", "reject", "ok")
	return ret.snapshot(), nil
}

// ProcessInventory books an approved return into stock. Resellable lines
// restock their quantity; damaged and defective lines are only logged. A
// line whose SKU is gone from the catalog is logged and skipped. The
// return completes regardless of per-line outcomes.
func (s *Service) ProcessInventory(ctx context.Context, returnID string) (SalesReturn, error) {
	ret, err := s.inStatus(returnID, StatusApproved)
	if err != nil {
		return SalesReturn{}, err
	}
	for _, l := range ret.Lines {
		switch l.Condition {
		case ConditionResellable:
			if err := s.stock.ApplyDelta(ctx, l.SKU, l.Quantity); err != nil {
				s.logger.ErrorContext(ctx, "resellable return could not be restocked",
					"return_id", returnID, "sku", l.SKU, "quantity", l.Quantity, "error", err)
				continue
			}
			s.logger.InfoContext(ctx, "resellable return restocked",
				"return_id", returnID, "sku", l.SKU, "quantity", l.Quantity)
		default:
			s.logger.InfoContext(ctx, "returned units withheld from stock",
				"return_id", returnID, "sku", l.SKU, "quantity", l.Quantity, "condition", l.Condition)
		}
	}
	ret.Status = StatusCompleted
	s.logger.InfoContext(ctx, "return completed", "return_id", returnID, "refund", ret.TotalRefund())
	s.metrics.ObserveOp("returns", "process", "ok")
	return ret.snapshot(), nil
}

// ByID returns the return with the given id.
func (s *Service) ByID(ctx context.Context, returnID string) (SalesReturn, error) {
	ret, ok := s.returns[returnID]
	if !ok {
		return SalesReturn{}, fmt.Errorf("returns: return %s: %w", returnID, shared.ErrNotFound)
	}
	return ret.snapshot(), nil
}

// All returns every return sorted by id.
func (s *Service) All(ctx context.Context) []SalesReturn {
	out := make([]SalesReturn, 0, len(s.returns))
	for _, ret := range s.returns {
		out = append(out, ret.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByStatus returns returns in the given status sorted by id.
func (s *Service) ByStatus(ctx context.Context, status Status) []SalesReturn {
	var out []SalesReturn
	for _, ret := range s.returns {
		if ret.Status == status {
			out = append(out, ret.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) inStatus(returnID string, allowed ...Status) (*SalesReturn, error) {
	ret, ok := s.returns[returnID]
	if !ok {
		return nil, fmt.Errorf("returns: return %s: %w", returnID, shared.ErrNotFound)
	}
	for _, st := range allowed {
		if ret.Status == st {
			return ret, nil
		}
	}
	return nil, fmt.Errorf("returns: return %s is %s: %w", returnID, ret.Status, shared.ErrInvalidState)
}
