package procurement

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/stockpile-ims/stockpile/internal/platform/flatfile"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

const (
	OrdersFile     = "orders.csv"
	OrderItemsFile = "order_items.csv"

	ordersHeader     = "orderID,supplierID,orderDate,status,totalCost"
	orderItemsHeader = "orderID,itemSKU,itemName,orderedQuantity,receivedQuantity,purchasePrice"
)

// Load replaces the ledger's contents with the orders persisted under
// dataDir. Every status is persisted, so every readable row comes back.
func (s *Service) Load(ctx context.Context, dataDir string) error {
	headers := flatfile.NewTable(filepath.Join(dataDir, OrdersFile), ordersHeader, s.logger)
	records, err := headers.Load(ctx)
	if err != nil {
		s.metrics.ObservePersistError(OrdersFile)
		s.orders = make(map[string]*Order)
		return err
	}

	loaded := make(map[string]*Order)
	for _, rec := range records {
		rec = flatfile.Decode(rec)
		if len(rec) < 5 {
			s.logger.WarnContext(ctx, "skipping malformed order row", "fields", len(rec))
			continue
		}
		date, err := flatfile.ParseInstant(rec[2])
		if err != nil {
			s.logger.WarnContext(ctx, "skipping order with unreadable date", "order_id", rec[0], "value", rec[2])
			continue
		}
		status := Status(rec[3])
		switch status {
		case StatusPending, StatusPlaced, StatusPartiallyReceived, StatusReceived, StatusCancelled:
		default:
			s.logger.WarnContext(ctx, "skipping order with unknown status", "order_id", rec[0], "value", rec[3])
			continue
		}
		loaded[rec[0]] = &Order{
			ID:         rec[0],
			SupplierID: rec[1],
			Date:       date,
			Status:     status,
		}
	}

	lines := flatfile.NewTable(filepath.Join(dataDir, OrderItemsFile), orderItemsHeader, s.logger)
	lineRecords, err := lines.Load(ctx)
	if err != nil {
		s.metrics.ObservePersistError(OrderItemsFile)
		s.orders = loaded
		return err
	}
	for _, rec := range lineRecords {
		rec = flatfile.Decode(rec)
		if len(rec) < 6 {
			s.logger.WarnContext(ctx, "skipping malformed order line row", "fields", len(rec))
			continue
		}
		order, ok := loaded[rec[0]]
		if !ok {
			s.logger.WarnContext(ctx, "dropping orphan order line", "order_id", rec[0], "sku", rec[1])
			continue
		}
		ordered, err := strconv.Atoi(rec[3])
		if err != nil || ordered <= 0 {
			s.logger.WarnContext(ctx, "skipping order line with unusable ordered quantity", "order_id", rec[0], "sku", rec[1], "value", rec[3])
			continue
		}
		received, err := strconv.Atoi(rec[4])
		if err != nil || received < 0 {
			s.logger.WarnContext(ctx, "order line received quantity unreadable, assuming zero", "order_id", rec[0], "sku", rec[1], "value", rec[4])
			received = 0
		}
		if received > ordered {
			s.logger.WarnContext(ctx, "order line received more than ordered, clamping", "order_id", rec[0], "sku", rec[1])
			received = ordered
		}
		cost, err := shared.ParseAmount(rec[5])
		if err != nil || cost < 0 {
			s.logger.WarnContext(ctx, "skipping order line with unusable price", "order_id", rec[0], "sku", rec[1], "value", rec[5])
			continue
		}
		order.Lines = append(order.Lines, OrderLine{
			SKU:      rec[1],
			Name:     rec[2],
			Ordered:  ordered,
			Received: received,
			UnitCost: cost,
		})
	}

	s.orders = loaded
	s.logger.InfoContext(ctx, "purchase orders loaded", "count", len(loaded))
	return nil
}

// Save writes every order and its lines under dataDir. The stored total is
// a convenience for readers of the raw file; it is recomputed on the way
// out and ignored on the way back in.
func (s *Service) Save(ctx context.Context, dataDir string) error {
	headerRecords := make([][]string, 0, len(s.orders))
	lineRecords := make([][]string, 0, len(s.orders))
	for _, order := range s.All(ctx) {
		headerRecords = append(headerRecords, []string{
			order.ID,
			order.SupplierID,
			flatfile.FormatInstant(order.Date),
			string(order.Status),
			shared.FormatAmount(order.Total()),
		})
		for _, l := range order.Lines {
			lineRecords = append(lineRecords, []string{
				order.ID,
				l.SKU,
				l.Name,
				strconv.Itoa(l.Ordered),
				strconv.Itoa(l.Received),
				shared.FormatAmount(l.UnitCost),
			})
		}
	}

	headers := flatfile.NewTable(filepath.Join(dataDir, OrdersFile), ordersHeader, s.logger)
	headerErr := headers.Save(ctx, headerRecords)
	if headerErr != nil {
		s.metrics.ObservePersistError(OrdersFile)
	}
	lines := flatfile.NewTable(filepath.Join(dataDir, OrderItemsFile), orderItemsHeader, s.logger)
	lineErr := lines.Save(ctx, lineRecords)
	if lineErr != nil {
		s.metrics.ObservePersistError(OrderItemsFile)
	}
	return errors.Join(headerErr, lineErr)
}
