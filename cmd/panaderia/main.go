package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panaderiapro/panaderiapro/internal/app"
	"github.com/panaderiapro/panaderiapro/internal/catalog/categories"
	"github.com/panaderiapro/panaderiapro/internal/catalog/customers"
	"github.com/panaderiapro/panaderiapro/internal/catalog/products"
	"github.com/panaderiapro/panaderiapro/internal/catalog/suppliers"
	"github.com/panaderiapro/panaderiapro/internal/dashboard"
	"github.com/panaderiapro/panaderiapro/internal/diagnostics"
	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/ledger"
	"github.com/panaderiapro/panaderiapro/internal/observability"
	"github.com/panaderiapro/panaderiapro/internal/platform/cache"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/procurement"
	"github.com/panaderiapro/panaderiapro/internal/reports"
	"github.com/panaderiapro/panaderiapro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	storeErr := cfg.StoreError()
	var pool *pgxpool.Pool
	if storeErr == nil {
		pool, err = db.New(ctx, db.Options{
			URL:      cfg.StoreURL,
			Key:      cfg.StoreKey,
			MaxConns: cfg.StoreMaxConns,
			Timeout:  cfg.StoreTimeout,
		})
		if err != nil {
			logger.Error("connect store", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		logger.Warn("store not configured, serving in setup-required mode", slog.Any("error", storeErr))
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	ledgerCache := cache.NewVersioned(redisClient, "ledger", cfg.CacheTTL)
	dashboardCache := cache.NewVersioned(redisClient, "dashboard", cfg.CacheTTL)
	for _, c := range []*cache.Versioned{ledgerCache, dashboardCache} {
		if err := c.ListenForInvalidation(ctx); err != nil {
			logger.Warn("cache invalidation listener", slog.String("channel", c.Channel()), slog.Any("error", err))
		}
	}

	params := app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		StoreErr:           storeErr,
		DiagnosticsHandler: diagnostics.NewHandler(diagnostics.NewChecker(diagnostics.NewPoolCounter(pool), storeErr)),
		Metrics:            metrics,
	}

	if storeErr == nil {
		customersService := customers.NewService(customers.NewRepository(pool))
		productsService := products.NewService(products.NewRepository(pool), dashboardCache, logger)
		categoriesService := categories.NewService(categories.NewRepository(pool))
		suppliersService := suppliers.NewService(suppliers.NewRepository(pool))

		ledgerService := ledger.NewService(ledger.NewRepository(pool), ledgerCache, metrics, logger, ledger.Options{
			AtomicWrites:   cfg.LedgerAtomicWrites,
			DecrementStock: cfg.LedgerDecrementStock,
			StoreTimeout:   cfg.StoreTimeout,
		})
		inventoryService := inventory.NewService(inventory.NewRepository(pool))
		procurementService := procurement.NewService(procurement.NewRepository(pool), metrics, logger, procurement.Options{
			AtomicWrites:   cfg.LedgerAtomicWrites,
			IncrementStock: true,
			StoreTimeout:   cfg.StoreTimeout,
		})
		reportsService := reports.NewService(reports.NewRepository(pool), logger)
		dashboardService := dashboard.NewService(ledgerService, productsService, customersService, dashboardCache, ledgerCache, logger)

		params.CustomersHandler = customers.NewHandler(logger, customersService, metrics)
		params.ProductsHandler = products.NewHandler(logger, productsService, metrics)
		params.CategoriesHandler = categories.NewHandler(logger, categoriesService, metrics)
		params.SuppliersHandler = suppliers.NewHandler(logger, suppliersService, metrics)
		params.LedgerHandler = ledger.NewHandler(logger, ledgerService, metrics)
		params.InventoryHandler = inventory.NewHandler(logger, inventoryService, metrics)
		params.ProcurementHandler = procurement.NewHandler(logger, procurementService, metrics)
		params.ReportsHandler = reports.NewHandler(logger, reportsService, metrics)
		params.DashboardHandler = dashboard.NewHandler(logger, dashboardService, metrics)
	}

	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		params.JobHandler = jobs.NewHandler(inspector, logger)
	} else {
		params.JobHandler = jobs.NewHandler(nil, logger)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      app.NewRouter(params),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
