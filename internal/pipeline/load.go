package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/urbanair/air-quality-etl/internal/adapter/supabase"
	"github.com/urbanair/air-quality-etl/internal/domain"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

// Store is the relational-store surface the loader depends on. Applying
// the schema is a distinct capability from inserting so the loader can
// treat its failure as a manual step rather than an abort.
type Store interface {
	EnsureTable(ctx context.Context) error
	InsertRows(ctx context.Context, rows []supabase.Row) error
}

// Loader pushes the staged table into the store in fixed-size batches.
type Loader struct {
	store      Store
	stagedPath string
	batchSize  int
	retryWait  time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewLoader creates the load stage.
func NewLoader(store Store, stagedPath string, batchSize int, retryWait time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		store:      store,
		stagedPath: stagedPath,
		batchSize:  batchSize,
		retryWait:  retryWait,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
}

// SetClock swaps the time source used for the batch retry delay.
func (l *Loader) SetClock(clk clockwork.Clock) {
	l.clock = clk
}

// Run ensures the target table exists (best-effort), then inserts the
// staged rows in order-preserving batches. Each failed batch gets one
// retry after a fixed delay; a batch that fails twice is logged and
// skipped so the remaining batches still load. The load is best-effort
// and partial-success tolerant, not atomic.
func (l *Loader) Run(ctx context.Context) error {
	if err := l.store.EnsureTable(ctx); err != nil {
		// The table may already exist, or creation may need privileges
		// only available out-of-band. Hand the operator the DDL and
		// carry on.
		l.logger.Warn("schema create failed; apply the DDL manually if the table is missing", "error", err)
		fmt.Println(supabase.CreateTableDDL())
	}

	records, err := staging.ReadStaged(l.stagedPath)
	if err != nil {
		return err
	}

	batches := chunkRecords(records, l.batchSize)
	l.logger.Info("loading staged rows",
		"rows", len(records),
		"batches", len(batches),
		"batch_size", l.batchSize,
	)

	var loaded, failed int
	for i, batch := range batches {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := l.insertWithRetry(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("batch failed permanently, skipping", "batch", i+1, "rows", len(batch), "error", err)
			l.metrics.BatchesFailed.Inc()
			failed++
			continue
		}

		l.metrics.BatchesInserted.Inc()
		l.metrics.RowsLoaded.Add(float64(len(batch)))
		loaded += len(batch)
		l.logger.Info("batch inserted", "batch", i+1, "rows", len(batch))
	}

	l.logger.Info("load complete", "rows_loaded", loaded, "batches_failed", failed)
	return nil
}

// insertWithRetry tries a batch, sleeps the fixed delay, and tries once
// more.
func (l *Loader) insertWithRetry(ctx context.Context, batch []domain.Record) error {
	rows := storageRows(batch)

	err := l.store.InsertRows(ctx, rows)
	if err == nil {
		return nil
	}
	l.logger.Warn("batch insert failed, retrying", "rows", len(rows), "wait", l.retryWait, "error", err)

	if !sleepWithContext(ctx, l.clock, l.retryWait) {
		return ctx.Err()
	}
	return l.store.InsertRows(ctx, rows)
}

// storageRows converts staged records to storage form: storage column
// names, canonical timestamps, explicit nulls for missing pollutants.
func storageRows(records []domain.Record) []supabase.Row {
	rows := make([]supabase.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, supabase.Row{
			City:            r.City,
			Time:            r.Time.UTC().Format(domain.TimeLayout),
			PM10:            r.PM10,
			PM25:            r.PM25,
			CarbonMonoxide:  r.CarbonMonoxide,
			NitrogenDioxide: r.NitrogenDioxide,
			SulphurDioxide:  r.SulphurDioxide,
			Ozone:           r.Ozone,
			UVIndex:         r.UVIndex,
			AQICategory:     r.Category,
			SeverityScore:   r.Severity,
			RiskFlag:        r.Risk,
			Hour:            r.Hour,
		})
	}
	return rows
}

// chunkRecords splits records into ceil(len/size) batches of at most size
// rows, preserving input order.
func chunkRecords(records []domain.Record, size int) [][]domain.Record {
	if len(records) == 0 {
		return nil
	}

	batches := make([][]domain.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end])
	}
	return batches
}

// sleepWithContext waits d on the given clock, returning false if the
// context is cancelled first.
func sleepWithContext(ctx context.Context, clk clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clk.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
