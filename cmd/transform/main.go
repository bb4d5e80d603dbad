// Command transform flattens every raw response file into the staged
// CSV, computing the derived category, severity, risk, and hour fields.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urbanair/air-quality-etl/internal/config"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/pipeline"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("transform failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := observability.NewLogger(cfg, "transform")
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := staging.NewRawStore(cfg.RawDir())
	if err != nil {
		return err
	}

	transformer := pipeline.NewTransformer(raw, cfg.StagedPath(), logger, observability.NewMetrics())

	_, err = transformer.Run(ctx)
	return err
}
