package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Cities, 5)
	assert.Equal(t, "Delhi", cfg.Cities[0].Name)
	assert.Equal(t, 28.7041, cfg.Cities[0].Lat)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("logs", "pipeline.log"), cfg.LogFile)
	assert.Equal(t, "https://air-quality-api.open-meteo.com/v1/air-quality", cfg.APIBaseURL)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 3, cfg.FetchRetries)
	assert.Equal(t, 2*time.Second, cfg.FetchRetryWait)
	assert.Equal(t, 30*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.Equal(t, 3*time.Second, cfg.BatchRetryWait)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("CITIES", "Pune:18.5204:73.8567, Chennai:13.0827:80.2707")
	t.Setenv("DATA_DIR", "/tmp/aq")
	t.Setenv("API_BASE_URL", "http://localhost:8081/v1/air-quality")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("FETCH_RETRY_WAIT", "100ms")
	t.Setenv("BATCH_SIZE", "50")
	t.Setenv("BATCH_RETRY_WAIT", "1s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Cities, 2)
	assert.Equal(t, "Pune", cfg.Cities[0].Name)
	assert.Equal(t, 73.8567, cfg.Cities[0].Lon)
	assert.Equal(t, "Chennai", cfg.Cities[1].Name)

	assert.Equal(t, "/tmp/aq", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/aq", "raw"), cfg.RawDir())
	assert.Equal(t, filepath.Join("/tmp/aq", "staged", "air_quality_transformed.csv"), cfg.StagedPath())
	assert.Equal(t, filepath.Join("/tmp/aq", "processed"), cfg.ProcessedDir())

	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 5, cfg.FetchRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.FetchRetryWait)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchRetryWait)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestLoad_InvalidCities(t *testing.T) {
	t.Setenv("CITIES", "Pune:18.5204")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CITIES")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestRequireStore(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		require.Error(t, cfg.RequireStore())
	})

	t.Run("both set", func(t *testing.T) {
		t.Setenv("SUPABASE_URL", "https://example.supabase.co")
		t.Setenv("SUPABASE_KEY", "service-role-key")
		cfg, err := Load()
		require.NoError(t, err)
		require.NoError(t, cfg.RequireStore())
	})

	t.Run("url without key", func(t *testing.T) {
		t.Setenv("SUPABASE_URL", "https://example.supabase.co")
		cfg, err := Load()
		require.NoError(t, err)
		require.Error(t, cfg.RequireStore())
	})
}
