package sales

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/stockpile-ims/stockpile/internal/platform/flatfile"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

const (
	SalesFile     = "sales.csv"
	SaleItemsFile = "sale_items.csv"

	salesHeader     = "SaleID,SaleDate,TotalAmount,Status"
	saleItemsHeader = "SaleID,ItemSKU,ItemName,QuantitySold,PriceAtSale"
)

// Load replaces the ledger's contents with the sales persisted under
// dataDir. Pending rows are never present in well-formed files, but any
// that appear are skipped anyway. Line rows without a matching header are
// dropped with a warning.
func (s *Service) Load(ctx context.Context, dataDir string) error {
	headers := flatfile.NewTable(filepath.Join(dataDir, SalesFile), salesHeader, s.logger)
	records, err := headers.Load(ctx)
	if err != nil {
		s.metrics.ObservePersistError(SalesFile)
		s.sales = make(map[string]*Sale)
		return err
	}

	loaded := make(map[string]*Sale)
	for _, rec := range records {
		rec = flatfile.Decode(rec)
		if len(rec) < 4 {
			s.logger.WarnContext(ctx, "skipping malformed sale row", "fields", len(rec))
			continue
		}
		status := Status(rec[3])
		if status != StatusCompleted && status != StatusCancelled {
			s.logger.InfoContext(ctx, "skipping non-terminal sale row", "sale_id", rec[0], "status", rec[3])
			continue
		}
		date, err := flatfile.ParseInstant(rec[1])
		if err != nil {
			s.logger.WarnContext(ctx, "skipping sale with unreadable date", "sale_id", rec[0], "value", rec[1])
			continue
		}
		total, err := shared.ParseAmount(rec[2])
		if err != nil {
			s.logger.WarnContext(ctx, "skipping sale with unreadable total", "sale_id", rec[0], "value", rec[2])
			continue
		}
		loaded[rec[0]] = &Sale{
			ID:           rec[0],
			Date:         date,
			Status:       status,
			carriedTotal: total,
		}
	}

	lines := flatfile.NewTable(filepath.Join(dataDir, SaleItemsFile), saleItemsHeader, s.logger)
	lineRecords, err := lines.Load(ctx)
	if err != nil {
		s.metrics.ObservePersistError(SaleItemsFile)
		s.sales = loaded
		return err
	}
	for _, rec := range lineRecords {
		rec = flatfile.Decode(rec)
		if len(rec) < 5 {
			s.logger.WarnContext(ctx, "skipping malformed sale line row", "fields", len(rec))
			continue
		}
		sale, ok := loaded[rec[0]]
		if !ok {
			s.logger.WarnContext(ctx, "dropping orphan sale line", "sale_id", rec[0], "sku", rec[1])
			continue
		}
		qty, err := strconv.Atoi(rec[3])
		if err != nil || qty <= 0 {
			s.logger.WarnContext(ctx, "skipping sale line with unusable quantity", "sale_id", rec[0], "sku", rec[1], "value", rec[3])
			continue
		}
		price, err := shared.ParseAmount(rec[4])
		if err != nil || price < 0 {
			s.logger.WarnContext(ctx, "skipping sale line with unusable price", "sale_id", rec[0], "sku", rec[1], "value", rec[4])
			continue
		}
		sale.Lines = append(sale.Lines, SaleLine{
			SKU:       rec[1],
			Name:      rec[2],
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	s.sales = loaded
	s.logger.InfoContext(ctx, "sales loaded", "count", len(loaded))
	return nil
}

// Save writes all terminal sales and their lines under dataDir. Pending
// sales are intentionally left out so an unfinished sale never survives a
// restart. Each file is written independently; a failure on one does not
// stop the other.
func (s *Service) Save(ctx context.Context, dataDir string) error {
	headerRecords := make([][]string, 0, len(s.sales))
	lineRecords := make([][]string, 0, len(s.sales))
	for _, sale := range s.All(ctx) {
		if sale.Status != StatusCompleted && sale.Status != StatusCancelled {
			continue
		}
		headerRecords = append(headerRecords, []string{
			sale.ID,
			flatfile.FormatInstant(sale.Date),
			shared.FormatAmount(sale.Total()),
			string(sale.Status),
		})
		for _, l := range sale.Lines {
			lineRecords = append(lineRecords, []string{
				sale.ID,
				l.SKU,
				l.Name,
				strconv.Itoa(l.Quantity),
				shared.FormatAmount(l.UnitPrice),
			})
		}
	}

	headers := flatfile.NewTable(filepath.Join(dataDir, SalesFile), salesHeader, s.logger)
	headerErr := headers.Save(ctx, headerRecords)
	if headerErr != nil {
		s.metrics.ObservePersistError(SalesFile)
	}
	lines := flatfile.NewTable(filepath.Join(dataDir, SaleItemsFile), saleItemsHeader, s.logger)
	lineErr := lines.Save(ctx, lineRecords)
	if lineErr != nil {
		s.metrics.ObservePersistError(SaleItemsFile)
	}
	return errors.Join(headerErr, lineErr)
}
