// Command pipeline runs all four ETL stages strictly in sequence:
// extract → transform → load → analyze. Any stage failure aborts the
// remaining stages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/urbanair/air-quality-etl/internal/adapter/http"
	"github.com/urbanair/air-quality-etl/internal/adapter/openmeteo"
	"github.com/urbanair/air-quality-etl/internal/adapter/supabase"
	"github.com/urbanair/air-quality-etl/internal/config"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/pipeline"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The load and analyze stages need the store; fail before any work
	// rather than after extraction has already run.
	if err := cfg.RequireStore(); err != nil {
		return err
	}

	logger, closeLog, err := observability.NewLogger(cfg, "pipeline")
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	raw, err := staging.NewRawStore(cfg.RawDir())
	if err != nil {
		return err
	}

	fetcher := openmeteo.NewClient(cfg.APIBaseURL, cfg.FetchTimeout, cfg.FetchRetryWait, cfg.FetchRetries, logger)
	store := supabase.NewClient(cfg.StoreURL, cfg.StoreKey, cfg.StoreTimeout, logger)

	p := pipeline.New(
		pipeline.NewExtractor(fetcher, raw, cfg.Cities, logger, metrics),
		pipeline.NewTransformer(raw, cfg.StagedPath(), logger, metrics),
		pipeline.NewLoader(store, cfg.StagedPath(), cfg.BatchSize, cfg.BatchRetryWait, logger, metrics),
		pipeline.NewAnalyzer(store, cfg.ProcessedDir(), logger, metrics),
		logger, metrics,
	)

	runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	return runErr
}
