package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanair/air-quality-etl/internal/analysis"
	"github.com/urbanair/air-quality-etl/internal/domain"
	"github.com/urbanair/air-quality-etl/internal/observability"
)

type fakeRowSource struct {
	rows []domain.StoredRow
	err  error
}

func (s *fakeRowSource) SelectAll(context.Context) ([]domain.StoredRow, error) {
	return s.rows, s.err
}

func storedRow(id int64, city string, hour int, pm25 float64, risk string) domain.StoredRow {
	return domain.StoredRow{
		ID:            id,
		City:          city,
		Time:          time.Date(2026, 8, 24, hour, 0, 0, 0, time.UTC),
		PM25:          &pm25,
		SeverityScore: pm25 * 5,
		RiskFlag:      risk,
		Hour:          hour,
	}
}

func TestAnalyzer_EmptyStoreIsSoftStop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	a := NewAnalyzer(&fakeRowSource{}, dir, discardLogger(), observability.NewMetricsForTesting())

	require.NoError(t, a.Run(context.Background()))

	// No output directory, no CSVs, no charts.
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzer_SelectErrorIsFatal(t *testing.T) {
	a := NewAnalyzer(&fakeRowSource{err: errors.New("store down")}, t.TempDir(),
		discardLogger(), observability.NewMetricsForTesting())

	require.Error(t, a.Run(context.Background()))
}

func TestAnalyzer_WritesAllOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	source := &fakeRowSource{rows: []domain.StoredRow{
		storedRow(1, "Delhi", 8, 100, domain.RiskHigh),
		storedRow(2, "Delhi", 9, 60, domain.RiskModerate),
		storedRow(3, "Mumbai", 8, 40, domain.RiskLow),
	}}

	a := NewAnalyzer(source, dir, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, a.Run(context.Background()))

	expected := []string{
		analysis.SummaryFile,
		analysis.RiskFile,
		analysis.TrendsFile,
		analysis.HistChartFile,
		analysis.BarChartFile,
		analysis.LineChartFile,
		analysis.ScatterChartFile,
	}
	for _, file := range expected {
		_, err := os.Stat(filepath.Join(dir, file))
		require.NoError(t, err, file)
	}
}
