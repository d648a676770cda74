package app

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/stockpile-ims/stockpile/internal/inventory"
	"github.com/stockpile-ims/stockpile/internal/masterdata/suppliers"
	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/procurement"
	"github.com/stockpile-ims/stockpile/internal/returns"
	"github.com/stockpile-ims/stockpile/internal/sales"
	"github.com/stockpile-ims/stockpile/internal/users"
)

// Runtime wires every ledger and catalog together over one data directory.
type Runtime struct {
	Config  *Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	Catalog   *inventory.Catalog
	Suppliers *suppliers.Directory
	Users     *users.Service
	Sales     *sales.Service
	Orders    *procurement.Service
	Returns   *returns.Service
}

// NewRuntime builds the full service graph. Nothing touches disk until
// LoadAll.
func NewRuntime(cfg *Config, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = NewLogger(cfg)
	}
	metrics := observability.NewMetrics()

	catalog := inventory.NewCatalog(logger, metrics)
	directory := suppliers.NewDirectory(logger)
	userSvc := users.NewService(logger)
	salesSvc := sales.NewService(catalog, logger, metrics)
	orderSvc := procurement.NewService(catalog, directory, logger, metrics)
	returnSvc := returns.NewService(catalog, salesSvc, logger, metrics)

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Catalog:   catalog,
		Suppliers: directory,
		Users:     userSvc,
		Sales:     salesSvc,
		Orders:    orderSvc,
		Returns:   returnSvc,
	}
}

// LoadAll reads every data file under the configured directory. The six
// collections are independent on disk, so they load concurrently. A fresh
// directory loads clean: missing files are empty collections, and the
// bootstrap admin is seeded when no users exist. An unreadable file is not
// fatal: that collection starts empty or partial with a warning, and the
// engine keeps running on whatever did load.
func (r *Runtime) LoadAll(ctx context.Context) error {
	dir := r.Config.DataDir
	g, gctx := errgroup.WithContext(ctx)
	load := func(name string, fn func(context.Context, string) error) func() error {
		return func() error {
			if err := fn(gctx, dir); err != nil {
				r.Logger.WarnContext(gctx, "collection unreadable, continuing without it",
					"collection", name, "error", err)
			}
			return nil
		}
	}
	g.Go(load("items", r.Catalog.Load))
	g.Go(load("suppliers", r.Suppliers.Load))
	g.Go(load("users", r.Users.Load))
	g.Go(load("sales", r.Sales.Load))
	g.Go(load("orders", r.Orders.Load))
	g.Go(load("returns", r.Returns.Load))
	if err := g.Wait(); err != nil {
		return err
	}
	if len(r.Users.All(ctx)) == 0 {
		if err := r.Users.EnsureDefaultAdmin(ctx, r.Config.BootstrapAdminUser, r.Config.BootstrapAdminPassword); err != nil {
			return err
		}
		r.Logger.WarnContext(ctx, "seeded bootstrap admin, change its password",
			"username", r.Config.BootstrapAdminUser)
	}
	r.Logger.InfoContext(ctx, "data directory loaded", "dir", dir)
	return nil
}

// SaveAll writes every collection back out. Each file is attempted even
// when an earlier one fails; the combined error reports all failures.
func (r *Runtime) SaveAll(ctx context.Context) error {
	dir := r.Config.DataDir
	err := errors.Join(
		r.Catalog.Save(ctx, dir),
		r.Suppliers.Save(ctx, dir),
		r.Users.Save(ctx, dir),
		r.Sales.Save(ctx, dir),
		r.Orders.Save(ctx, dir),
		r.Returns.Save(ctx, dir),
	)
	if err != nil {
		return err
	}
	r.Logger.InfoContext(ctx, "data directory saved", "dir", dir)
	return nil
}
