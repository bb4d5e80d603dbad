// Command analyze reads the full stored table back and writes the KPI
// summary, risk distribution, and trend CSVs plus four chart images.
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
		slog.Error("analyze failed", "error", err)
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

	logger, closeLog, err := observability.NewLogger(cfg, "analyze")
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := supabase.NewClient(cfg.StoreURL, cfg.StoreKey, cfg.StoreTimeout, logger)
	analyzer := pipeline.NewAnalyzer(store, cfg.ProcessedDir(), logger, observability.NewMetrics())

	return analyzer.Run(ctx)
}
