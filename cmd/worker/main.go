package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/panaderiapro/panaderiapro/internal/app"
	jobmetrics "github.com/panaderiapro/panaderiapro/internal/jobs"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/reports"
	"github.com/panaderiapro/panaderiapro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, db.Options{
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

	reportService := reports.NewService(reports.NewRepository(pool), logger)
	reportJobs := jobs.NewReportJobs(reportService, logger, jobmetrics.NewMetrics(nil))

	cron, err := jobs.DefaultCron()
	if err != nil {
		logger.Error("build cron tasks", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  reportJobs.Handlers(),
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
