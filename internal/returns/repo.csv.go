package returns

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/stockpile-ims/stockpile/internal/platform/flatfile"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

const (
	ReturnsFile     = "sales_returns.csv"
	ReturnItemsFile = "sales_return_items.csv"

	returnsHeader     = "returnID,originalSaleID,returnDate,totalRefundAmount,status,customerNotes"
	returnItemsHeader = "returnID,itemSKU,itemName,returnedQuantity,unitPriceAtSale,condition,reason"
)

// Load replaces the ledger's contents with the returns persisted under
// dataDir. All statuses round-trip.
func (s *Service) Load(ctx context.Context, dataDir string) error {
	headers := flatfile.NewTable(filepath.Join(dataDir, ReturnsFile), returnsHeader, s.logger)
	records, err := headers.Load(ctx)
	if err != nil {
		s.metrics.ObservePersistError(ReturnsFile)
		s.returns = make(map[string]*SalesReturn)
		return err
	}

	loaded := make(map[string]*SalesReturn)
	for _, rec := range records {
		rec = flatfile.Decode(rec)
		if len(rec) < 6 {
			s.logger.WarnContext(ctx, "skipping malformed return row", "fields", len(rec))
			continue
		}
		date, err := flatfile.ParseInstant(rec[2])
		if err != nil {
			s.logger.WarnContext(ctx, "skipping return with unreadable date", "return_id", rec[0], "value", rec[2])
			continue
		}
		status := Status(rec[4])
		switch status {
		case StatusPending, StatusApproved, StatusCompleted, StatusRejected:
		default:
			s.logger.WarnContext(ctx, "skipping return with unknown status", "return_id", rec[0], "value", rec[4])
			continue
		}
		loaded[rec[0]] = &SalesReturn{
			ID:             rec[0],
			OriginalSaleID: rec[1],
			Date:           date,
			Status:         status,
			CustomerNotes:  rec[5],
		}
	}

	lines := flatfile.NewTable(filepath.Join(dataDir, ReturnItemsFile), returnItemsHeader, s.logger)
	lineRecords, err := lines.Load(ctx)
	if err != nil {
		s.metrics.ObservePersistError(ReturnItemsFile)
		s.returns = loaded
		return err
	}
	for _, rec := range lineRecords {
		rec = flatfile.Decode(rec)
		if len(rec) < 7 {
			s.logger.WarnContext(ctx, "skipping malformed return line row", "fields", len(rec))
			continue
		}
		ret, ok := loaded[rec[0]]
		if !ok {
			s.logger.WarnContext(ctx, "dropping orphan return line", "return_id", rec[0], "sku", rec[1])
			continue
		}
		qty, err := strconv.Atoi(rec[3])
		if err != nil || qty <= 0 {
			s.logger.WarnContext(ctx, "skipping return line with unusable quantity", "return_id", rec[0], "sku", rec[1], "value", rec[3])
			continue
		}
		price, err := shared.ParseAmount(rec[4])
		if err != nil || price < 0 {
			s.logger.WarnContext(ctx, "skipping return line with unusable price", "return_id", rec[0], "sku", rec[1], "value", rec[4])
			continue
		}
		condition := Condition(rec[5])
		switch condition {
		case ConditionResellable, ConditionDamaged, ConditionDefective:
		case "":
			condition = ConditionResellable
		default:
			s.logger.WarnContext(ctx, "return line has unknown condition, keeping units out of stock", "return_id", rec[0], "sku", rec[1], "value", rec[5])
			condition = ConditionDamaged
		}
		ret.Lines = append(ret.Lines, ReturnLine{
			SKU:       rec[1],
			Name:      rec[2],
			Quantity:  qty,
			UnitPrice: price,
			Condition: condition,
			Reason:    rec[6],
		})
	}

	s.returns = loaded
	s.logger.InfoContext(ctx, "sales returns loaded", "count", len(loaded))
	return nil
}

// Save writes every return and its lines under dataDir.
func (s *Service) Save(ctx context.Context, dataDir string) error {
	headerRecords := make([][]string, 0, len(s.returns))
	lineRecords := make([][]string, 0, len(s.returns))
	for _, ret := range s.All(ctx) {
		headerRecords = append(headerRecords, []string{
			ret.ID,
			ret.OriginalSaleID,
			flatfile.FormatInstant(ret.Date),
			shared.FormatAmount(ret.TotalRefund()),
			string(ret.Status),
			ret.CustomerNotes,
		})
		for _, l := range ret.Lines {
			lineRecords = append(lineRecords, []string{
				ret.ID,
				l.SKU,
				l.Name,
				strconv.Itoa(l.Quantity),
				shared.FormatAmount(l.UnitPrice),
				string(l.Condition),
				l.Reason,
			})
		}
	}

	headers := flatfile.NewTable(filepath.Join(dataDir, ReturnsFile), returnsHeader, s.logger)
	headerErr := headers.Save(ctx, headerRecords)
	if headerErr != nil {
		s.metrics.ObservePersistError(ReturnsFile)
	}
	lines := flatfile.NewTable(filepath.Join(dataDir, ReturnItemsFile), returnItemsHeader, s.logger)
	lineErr := lines.Save(ctx, lineRecords)
	if lineErr != nil {
		s.metrics.ObservePersistError(ReturnItemsFile)
	}
	return errors.Join(headerErr, lineErr)
}
