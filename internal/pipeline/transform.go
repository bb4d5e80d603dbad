package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urbanair/air-quality-etl/internal/domain"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

// Transformer flattens every raw file in the staging area into one staged
// table with derived fields.
type Transformer struct {
	raw        *staging.RawStore
	stagedPath string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewTransformer creates the transform stage.
func NewTransformer(raw *staging.RawStore, stagedPath string, logger *slog.Logger, metrics *observability.Metrics) *Transformer {
	return &Transformer{
		raw:        raw,
		stagedPath: stagedPath,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run reprocesses all raw files ever written — not just the latest run —
// into one staged CSV, overwriting any prior staged file. Rows where all
// seven pollutants are missing are dropped; every surviving row gets its
// derived category, severity, risk, and hour.
func (t *Transformer) Run(ctx context.Context) ([]domain.Record, error) {
	files, err := t.raw.List()
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	var dropped int
	for _, file := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		recs, d, err := t.transformFile(file)
		if err != nil {
			// A malformed file is tolerated: its rows are lost but the
			// remaining files still produce a staged table.
			t.logger.Warn("skipping unreadable raw file", "path", file.Path, "error", err)
			continue
		}
		records = append(records, recs...)
		dropped += d
	}

	if err := staging.WriteStaged(t.stagedPath, records); err != nil {
		return nil, err
	}

	t.metrics.RowsTransformed.Add(float64(len(records)))
	t.metrics.RowsDropped.Add(float64(dropped))
	t.logger.Info("transform complete",
		"raw_files", len(files),
		"rows", len(records),
		"dropped_all_null", dropped,
		"staged", t.stagedPath,
	)
	return records, nil
}

// transformFile flattens one raw file into records, returning the number
// of all-null rows it dropped.
func (t *Transformer) transformFile(file staging.RawFile) ([]domain.Record, int, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, 0, err
	}

	var payload domain.RawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, 0, fmt.Errorf("parse raw payload: %w", err)
	}

	hourly := payload.Hourly
	records := make([]domain.Record, 0, len(hourly.Time))
	dropped := 0
	for i, stamp := range hourly.Time {
		ts, err := time.Parse(domain.APITimeLayout, stamp)
		if err != nil {
			t.logger.Warn("skipping row with unparseable timestamp",
				"path", file.Path, "index", i, "time", stamp)
			continue
		}

		rec := domain.Record{
			City:            file.City,
			Time:            ts.UTC(),
			PM10:            valueAt(hourly.PM10, i),
			PM25:            valueAt(hourly.PM25, i),
			CarbonMonoxide:  valueAt(hourly.CarbonMonoxide, i),
			NitrogenDioxide: valueAt(hourly.NitrogenDioxide, i),
			SulphurDioxide:  valueAt(hourly.SulphurDioxide, i),
			Ozone:           valueAt(hourly.Ozone, i),
			UVIndex:         valueAt(hourly.UVIndex, i),
		}

		if rec.AllPollutantsNull() {
			dropped++
			continue
		}
		records = append(records, domain.Derive(rec))
	}

	return records, dropped, nil
}

// valueAt indexes a pollutant array positionally. Short or missing arrays
// yield nil rather than an error.
func valueAt(arr []*float64, i int) *float64 {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}
