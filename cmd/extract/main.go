// Command extract fetches hourly air-quality readings for every
// configured city and lands the raw JSON responses in the staging area.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urbanair/air-quality-etl/internal/adapter/openmeteo"
	"github.com/urbanair/air-quality-etl/internal/config"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/pipeline"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("extract failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := observability.NewLogger(cfg, "extract")
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

	client := openmeteo.NewClient(cfg.APIBaseURL, cfg.FetchTimeout, cfg.FetchRetryWait, cfg.FetchRetries, logger)
	extractor := pipeline.NewExtractor(client, raw, cfg.Cities, logger, observability.NewMetrics())

	_, err = extractor.Run(ctx)
	return err
}
