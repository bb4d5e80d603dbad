// Package pipeline wires the four ETL stages and the orchestrator that
// runs them in sequence.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/urbanair/air-quality-etl/internal/domain"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

// Fetcher retrieves one city's raw hourly readings, handling its own
// bounded retry.
type Fetcher interface {
	FetchCity(ctx context.Context, city domain.City) ([]byte, error)
}

// Extractor fetches every configured city and lands raw responses in the
// staging area.
type Extractor struct {
	fetcher Fetcher
	raw     *staging.RawStore
	cities  []domain.City
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExtractor creates the extract stage.
func NewExtractor(fetcher Fetcher, raw *staging.RawStore, cities []domain.City, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		raw:     raw,
		cities:  cities,
		logger:  logger,
		metrics: metrics,
	}
}

// Run fetches each city in turn and returns the paths of the raw files
// actually written. A city whose retries are exhausted is logged and
// skipped; it never aborts extraction of the remaining cities. Only
// context cancellation and staging-area write failures are fatal.
func (e *Extractor) Run(ctx context.Context) ([]string, error) {
	var written []string

	for _, city := range e.cities {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}

		payload, err := e.fetcher.FetchCity(ctx, city)
		if err != nil {
			if ctx.Err() != nil {
				return written, ctx.Err()
			}
			e.logger.Error("city fetch failed, skipping", "city", city.Name, "error", err)
			e.metrics.FetchAttempts.WithLabelValues(city.Name, "error").Inc()
			e.metrics.CitiesFailed.Inc()
			continue
		}
		e.metrics.FetchAttempts.WithLabelValues(city.Name, "success").Inc()

		path, err := e.raw.Write(city.Name, payload)
		if err != nil {
			return written, err
		}
		e.metrics.RawFilesWritten.Inc()
		e.logger.Info("raw file written", "city", city.Name, "path", path)
		written = append(written, path)
	}

	e.logger.Info("extraction complete", "cities", len(e.cities), "files", len(written))
	return written, nil
}
