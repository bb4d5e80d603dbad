package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urbanair/air-quality-etl/internal/analysis"
	"github.com/urbanair/air-quality-etl/internal/domain"
	"github.com/urbanair/air-quality-etl/internal/observability"
)

// RowSource reads the full stored table back for analysis.
type RowSource interface {
	SelectAll(ctx context.Context) ([]domain.StoredRow, error)
}

// Analyzer computes KPI summaries, risk distributions, trend tables, and
// charts over everything in the store.
type Analyzer struct {
	source       RowSource
	processedDir string
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewAnalyzer creates the analyze stage.
func NewAnalyzer(source RowSource, processedDir string, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		source:       source,
		processedDir: processedDir,
		logger:       logger,
		metrics:      metrics,
	}
}

// Run pulls all rows and writes three CSVs and four chart images to the
// processed directory. An empty table is a soft stop: a warning is logged
// and no files are written.
func (a *Analyzer) Run(ctx context.Context) error {
	rows, err := a.source.SelectAll(ctx)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		a.logger.Warn("no rows in store, nothing to analyze")
		return nil
	}

	if err := os.MkdirAll(a.processedDir, 0o755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}

	summary := analysis.Summarize(rows)
	if err := analysis.WriteSummaryCSV(filepath.Join(a.processedDir, analysis.SummaryFile), summary); err != nil {
		return err
	}
	if err := analysis.WriteRiskCSV(filepath.Join(a.processedDir, analysis.RiskFile), analysis.RiskDistribution(rows)); err != nil {
		return err
	}
	if err := analysis.WriteTrendsCSV(filepath.Join(a.processedDir, analysis.TrendsFile), analysis.Trends(rows)); err != nil {
		return err
	}
	if err := analysis.RenderCharts(rows, a.processedDir); err != nil {
		return err
	}

	a.logger.Info("analysis complete",
		"rows", len(rows),
		"worst_city_pm2_5", summary.CityHighestAvgPM25,
		"worst_hour", summary.WorstAQIHour,
		"output", a.processedDir,
	)
	return nil
}
