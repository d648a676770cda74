package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/stockpile-ims/stockpile/internal/app"
	"github.com/stockpile-ims/stockpile/internal/procurement"
	"github.com/stockpile-ims/stockpile/internal/returns"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "stockpile:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	rt := app.NewRuntime(cfg, logger)
	if err := rt.LoadAll(ctx); err != nil {
		return err
	}

	if len(os.Args) < 2 {
		usage()
		return nil
	}
	switch os.Args[1] {
	case "items":
		return listItems(ctx, rt)
	case "suppliers":
		return listSuppliers(ctx, rt)
	case "low-stock":
		return lowStock(ctx, rt, os.Args[2:])
	case "value":
		fmt.Printf("total stock value: %s\n", shared.FormatAmount(rt.Catalog.TotalValue(ctx)))
		return nil
	case "sales":
		return listSales(ctx, rt, os.Args[2:])
	case "orders":
		return listOrders(ctx, rt, os.Args[2:])
	case "returns":
		return listReturns(ctx, rt, os.Args[2:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: stockpile <command> [flags]

commands:
  items       list the stock catalog
  suppliers   list the supplier directory
  low-stock   list items at or below a threshold
  value       print the total catalog value
  sales       list sales, optionally for one day or a date range
  orders      list purchase orders, optionally by status
  returns     list sales returns, optionally by status`)
}

func listItems(ctx context.Context, rt *app.Runtime) error {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tNAME\tCATEGORY\tQTY\tPRICE\tSUPPLIER\tSTATUS")
	for _, it := range rt.Catalog.All(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			it.SKU, it.Name, it.Category, it.Quantity, shared.FormatAmount(it.Price), it.SupplierID, it.Status)
	}
	return w.Flush()
}

func listSuppliers(ctx context.Context, rt *app.Runtime) error {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONTACT")
	for _, s := range rt.Suppliers.All(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.SupplierID, s.Name, s.ContactInfo)
	}
	return w.Flush()
}

func lowStock(ctx context.Context, rt *app.Runtime, args []string) error {
	fs := flag.NewFlagSet("low-stock", flag.ContinueOnError)
	threshold := fs.Int("threshold", rt.Config.LowStockThreshold, "reorder threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tNAME\tQTY")
	for _, it := range rt.Catalog.LowStock(ctx, *threshold) {
		fmt.Fprintf(w, "%s\t%s\t%d\n", it.SKU, it.Name, it.Quantity)
	}
	return w.Flush()
}

func listSales(ctx context.Context, rt *app.Runtime, args []string) error {
	fs := flag.NewFlagSet("sales", flag.ContinueOnError)
	on := fs.String("on", "", "only completed sales on this day (YYYY-MM-DD)")
	from := fs.String("from", "", "range start day (YYYY-MM-DD)")
	to := fs.String("to", "", "range end day (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := rt.Sales.All(ctx)
	switch {
	case *on != "":
		day, err := time.Parse(time.DateOnly, *on)
		if err != nil {
			return fmt.Errorf("bad -on date: %w", err)
		}
		if list, err = rt.Sales.CompletedOn(ctx, day); err != nil {
			return err
		}
	case *from != "" || *to != "":
		start, err := time.Parse(time.DateOnly, *from)
		if err != nil {
			return fmt.Errorf("bad -from date: %w", err)
		}
		end, err := time.Parse(time.DateOnly, *to)
		if err != nil {
			return fmt.Errorf("bad -to date: %w", err)
		}
		if list, err = rt.Sales.CompletedInRange(ctx, start, end); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tLINES\tTOTAL")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Date.Format(time.RFC3339), s.Status, len(s.Lines), shared.FormatAmount(s.Total()))
	}
	return w.Flush()
}

func listOrders(ctx context.Context, rt *app.Runtime, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list := rt.Orders.All(ctx)
	if *status != "" {
		list = rt.Orders.ByStatus(ctx, procurement.Status(*status))
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUPPLIER\tDATE\tSTATUS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.SupplierID, o.Date.Format(time.RFC3339), o.Status, shared.FormatAmount(o.Total()))
	}
	return w.Flush()
}

func listReturns(ctx context.Context, rt *app.Runtime, args []string) error {
	fs := flag.NewFlagSet("returns", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list := rt.Returns.All(ctx)
	if *status != "" {
		list = rt.Returns.ByStatus(ctx, returns.Status(*status))
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSALE\tDATE\tSTATUS\tREFUND")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.OriginalSaleID, r.Date.Format(time.RFC3339), r.Status, shared.FormatAmount(r.TotalRefund()))
	}
	return w.Flush()
}
