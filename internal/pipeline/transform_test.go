package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanair/air-quality-etl/internal/domain"
	"github.com/urbanair/air-quality-etl/internal/observability"
	"github.com/urbanair/air-quality-etl/internal/staging"
)

func writeRawFixture(t *testing.T, dir, name, payload string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(payload), 0o644))
}

func newTransformer(t *testing.T, rawDir string) (*Transformer, string) {
	t.Helper()
	store, err := staging.NewRawStore(rawDir)
	require.NoError(t, err)
	stagedPath := filepath.Join(t.TempDir(), "staged.csv")
	return NewTransformer(store, stagedPath, discardLogger(), observability.NewMetricsForTesting()), stagedPath
}

func TestTransformer_EndToEnd(t *testing.T) {
	// Two hours with pm2_5 [40, 120] and everything else null exercises
	// both sides of the category/severity/risk derivation.
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "delhi_raw_20260824_100000.json", `{
		"hourly": {
			"time": ["2026-08-24T00:00", "2026-08-24T01:00"],
			"pm2_5": [40, 120]
		}
	}`)

	tr, stagedPath := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Delhi", records[0].City)
	assert.Equal(t, domain.CategoryGood, records[0].Category)
	assert.Equal(t, 200.0, records[0].Severity)
	assert.Equal(t, domain.RiskLow, records[0].Risk)
	assert.Equal(t, 0, records[0].Hour)

	assert.Equal(t, domain.CategoryModerate, records[1].Category)
	assert.Equal(t, 600.0, records[1].Severity)
	assert.Equal(t, domain.RiskHigh, records[1].Risk)
	assert.Equal(t, 1, records[1].Hour)

	// Staged file round-trips to the same records.
	staged, err := staging.ReadStaged(stagedPath)
	require.NoError(t, err)
	assert.Equal(t, records, staged)
}

func TestTransformer_ShortAndMissingArraysYieldNulls(t *testing.T) {
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "mumbai_raw_20260824_100000.json", `{
		"hourly": {
			"time": ["2026-08-24T00:00", "2026-08-24T01:00", "2026-08-24T02:00"],
			"pm2_5": [10, null],
			"pm10": [30]
		}
	}`)

	tr, _ := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	// Hour 0 has pm2_5+pm10; hour 1 is all null (dropped); hour 2 is all
	// null via short arrays (dropped).
	require.Len(t, records, 1)
	assert.Equal(t, 10.0, *records[0].PM25)
	assert.Equal(t, 30.0, *records[0].PM10)
	assert.Nil(t, records[0].Ozone)
}

func TestTransformer_KeepsRowWithSinglePollutant(t *testing.T) {
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "kolkata_raw_20260824_100000.json", `{
		"hourly": {
			"time": ["2026-08-24T05:00"],
			"uv_index": [6.5]
		}
	}`)

	tr, _ := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	// uv_index alone keeps the row but contributes nothing to severity.
	assert.Equal(t, 0.0, records[0].Severity)
	assert.Equal(t, domain.RiskLow, records[0].Risk)
	assert.Equal(t, domain.CategoryGood, records[0].Category)
	assert.Equal(t, 5, records[0].Hour)
}

func TestTransformer_ReprocessesAllHistoricalFiles(t *testing.T) {
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "delhi_raw_20260823_100000.json",
		`{"hourly":{"time":["2026-08-23T00:00"],"pm2_5":[15]}}`)
	writeRawFixture(t, rawDir, "delhi_raw_20260824_100000.json",
		`{"hourly":{"time":["2026-08-24T00:00"],"pm2_5":[25]}}`)

	tr, _ := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestTransformer_MalformedFileIsSkipped(t *testing.T) {
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "delhi_raw_20260824_100000.json", `{broken`)
	writeRawFixture(t, rawDir, "mumbai_raw_20260824_100000.json",
		`{"hourly":{"time":["2026-08-24T00:00"],"pm2_5":[25]}}`)

	tr, _ := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Mumbai", records[0].City)
}

func TestTransformer_EmptyHourlyBlock(t *testing.T) {
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "delhi_raw_20260824_100000.json", `{"hourly":{}}`)

	tr, stagedPath := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)

	// The staged file is still (re)written, headers only.
	_, err = os.Stat(stagedPath)
	require.NoError(t, err)
}

func TestTransformer_TimestampParsing(t *testing.T) {
	rawDir := t.TempDir()
	writeRawFixture(t, rawDir, "delhi_raw_20260824_100000.json", `{
		"hourly": {
			"time": ["2026-08-24T23:00", "not-a-time"],
			"pm2_5": [40, 40]
		}
	}`)

	tr, _ := newTransformer(t, rawDir)
	records, err := tr.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2026, 8, 24, 23, 0, 0, 0, time.UTC), records[0].Time)
	assert.Equal(t, 23, records[0].Hour)
}
