package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	assert.Equal(t, "localhost", cfg.LegacyDB.Host)
	assert.Equal(t, 5432, cfg.LegacyDB.Port)
	assert.Equal(t, "infrasight", cfg.LegacyDB.Database)
	assert.Equal(t, "disable", cfg.LegacyDB.SSLMode)

	assert.Equal(t, 5433, cfg.TargetDB.Port)
	assert.Equal(t, "infrasight_v2", cfg.TargetDB.Database)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)

	assert.Equal(t, 10000, cfg.Ingest.MaxItems)
	assert.Equal(t, 100, cfg.Ingest.SubBatchSize)
	assert.Equal(t, 10, cfg.Ingest.ErrorCap)
	assert.Equal(t, 24*time.Hour, cfg.Ingest.IdempotencyTTL)

	assert.Equal(t, 3, cfg.DualWrite.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.DualWrite.BaseDelay)
	assert.Equal(t, 5*time.Second, cfg.DualWrite.MaxDelay)
	assert.False(t, cfg.DualWrite.Strict)

	assert.Equal(t, 60*time.Second, cfg.Audit.Interval)
	assert.Equal(t, int64(100), cfg.Audit.DriftThreshold)

	assert.False(t, cfg.MQTT.Enabled)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("LEGACY_DB_HOST", "legacy-host")
	os.Setenv("TARGET_DB_HOST", "target-host")
	os.Setenv("TARGET_DB_PORT", "15433")
	os.Setenv("INGEST_MAX_ITEMS", "500")
	os.Setenv("DUALWRITE_STRICT", "true")
	os.Setenv("DUALWRITE_BASE_DELAY", "50ms")
	os.Setenv("AUDIT_DRIFT_THRESHOLD", "5")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "legacy-host", cfg.LegacyDB.Host)
	assert.Equal(t, "target-host", cfg.TargetDB.Host)
	assert.Equal(t, 15433, cfg.TargetDB.Port)
	assert.Equal(t, 500, cfg.Ingest.MaxItems)
	assert.True(t, cfg.DualWrite.Strict)
	assert.Equal(t, 50*time.Millisecond, cfg.DualWrite.BaseDelay)
	assert.Equal(t, int64(5), cfg.Audit.DriftThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("INGEST_MAX_ITEMS", "not-a-number")
	os.Setenv("DUALWRITE_BASE_DELAY", "not-a-duration")
	defer os.Clearenv()

	cfg := Load()

	assert.Equal(t, 10000, cfg.Ingest.MaxItems)
	assert.Equal(t, 100*time.Millisecond, cfg.DualWrite.BaseDelay)
}
