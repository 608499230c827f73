package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/shodoshare_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()
	assert.Equal(t, 3, cfg.DailyUploadLimit)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 5, cfg.MetricsSampleSeconds)
	assert.Equal(t, "local", cfg.StorageBackend)
}

func TestLoadClampsMetricsInterval(t *testing.T) {
	setRequiredEnv(t)

	for _, raw := range []string{"0", "-3"} {
		t.Setenv("METRICS_SAMPLE_INTERVAL", raw)
		cfg := Load()
		assert.Equal(t, 1, cfg.MetricsSampleSeconds, raw)
	}

	t.Setenv("METRICS_SAMPLE_INTERVAL", "30")
	assert.Equal(t, 30, Load().MetricsSampleSeconds)
}

func TestParseCSV(t *testing.T) {
	assert.Nil(t, parseCSV(" "))
	assert.Equal(t, []string{"http://a", "http://b"}, parseCSV("http://a, http://b,"))
}
