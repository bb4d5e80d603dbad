// Command load pushes the staged CSV into the relational store in
// fixed-size batches, creating the target table best-effort first.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urbanair/air-quality-etl/internal/adapter/supabase"
	"github.com/urbanair/air-quality-etl/internal/config"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("load failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireStore(); err != nil {
		return err
	}

	logger, closeLog, err := observability.NewLogger(cfg, "load")
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := supabase.NewClient(cfg.StoreURL, cfg.StoreKey, cfg.StoreTimeout, logger)
	loader := pipeline.NewLoader(store, cfg.StagedPath(), cfg.BatchSize, cfg.BatchRetryWait, logger, observability.NewMetrics())

	return loader.Run(ctx)
}
