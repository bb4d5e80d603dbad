package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urbanair/air-quality-etl/internal/observability"
)

// Pipeline runs the four stages strictly in sequence. Any stage error
// aborts the remaining stages; there is no partial-pipeline resume.
type Pipeline struct {
	extractor   *Extractor
	transformer *Transformer
	loader      *Loader
	analyzer    *Analyzer
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline from its four stages.
func New(e *Extractor, t *Transformer, l *Loader, a *Analyzer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		analyzer:    a,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes extract → transform → load → analyze.
func (p *Pipeline) Run(ctx context.Context) error {
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"extract", func(ctx context.Context) error {
			_, err := p.extractor.Run(ctx)
			return err
		}},
		{"transform", func(ctx context.Context) error {
			_, err := p.transformer.Run(ctx)
			return err
		}},
		{"load", p.loader.Run},
		{"analyze", p.analyzer.Run},
	}

	p.logger.Info("pipeline started")
	for _, stage := range stages {
		start := time.Now()
		if err := stage.run(ctx); err != nil {
			return fmt.Errorf("%s stage: %w", stage.name, err)
		}
		elapsed := time.Since(start)
		p.metrics.StageDuration.WithLabelValues(stage.name).Observe(elapsed.Seconds())
		p.logger.Info("stage finished", "name", stage.name, "elapsed", elapsed)
	}

	p.metrics.PipelineRuns.Inc()
	p.logger.Info("pipeline complete")
	return nil
}
