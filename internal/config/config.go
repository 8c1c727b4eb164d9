package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds one Postgres connection target. The service talks to
// two of these during the migration: the legacy store and the target store.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// MQTTConfig configures the optional readings consumer (disabled by default).
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// IngestConfig bounds the bulk ingestion pipeline.
type IngestConfig struct {
	MaxItems       int
	SubBatchSize   int
	ErrorCap       int
	IdempotencyTTL time.Duration
}

// DualWriteConfig tunes the coordinator's secondary-store retry.
type DualWriteConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Strict      bool
}

// AuditConfig drives the periodic drift watcher.
type AuditConfig struct {
	Interval       time.Duration
	DriftThreshold int64
	WebhookURL     string
}

// Config is the full infrasight-sync service configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	LegacyDB DatabaseConfig
	TargetDB DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Ingest    IngestConfig
	DualWrite DualWriteConfig
	Audit     AuditConfig
	MQTT      MQTTConfig
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.LegacyDB.Host = getEnv("LEGACY_DB_HOST", "localhost")
	cfg.LegacyDB.Port = parseInt(getEnv("LEGACY_DB_PORT", "5432"), 5432)
	cfg.LegacyDB.User = getEnv("LEGACY_DB_USER", "postgres")
	cfg.LegacyDB.Password = getEnv("LEGACY_DB_PASSWORD", "postgres")
	cfg.LegacyDB.Database = getEnv("LEGACY_DB_NAME", "infrasight")
	cfg.LegacyDB.SSLMode = getEnv("LEGACY_DB_SSLMODE", "disable")
	cfg.LegacyDB.MaxConns = parseInt(getEnv("LEGACY_DB_MAX_CONNS", "10"), 10)
	cfg.LegacyDB.MaxIdle = parseInt(getEnv("LEGACY_DB_MAX_IDLE", "5"), 5)

	cfg.TargetDB.Host = getEnv("TARGET_DB_HOST", "localhost")
	cfg.TargetDB.Port = parseInt(getEnv("TARGET_DB_PORT", "5433"), 5433)
	cfg.TargetDB.User = getEnv("TARGET_DB_USER", "postgres")
	cfg.TargetDB.Password = getEnv("TARGET_DB_PASSWORD", "postgres")
	cfg.TargetDB.Database = getEnv("TARGET_DB_NAME", "infrasight_v2")
	cfg.TargetDB.SSLMode = getEnv("TARGET_DB_SSLMODE", "disable")
	cfg.TargetDB.MaxConns = parseInt(getEnv("TARGET_DB_MAX_CONNS", "10"), 10)
	cfg.TargetDB.MaxIdle = parseInt(getEnv("TARGET_DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Ingest.MaxItems = parseInt(getEnv("INGEST_MAX_ITEMS", "10000"), 10000)
	cfg.Ingest.SubBatchSize = parseInt(getEnv("INGEST_SUB_BATCH_SIZE", "100"), 100)
	cfg.Ingest.ErrorCap = parseInt(getEnv("INGEST_ERROR_CAP", "10"), 10)
	cfg.Ingest.IdempotencyTTL = parseDuration(getEnv("INGEST_IDEMPOTENCY_TTL", "24h"), 24*time.Hour)

	cfg.DualWrite.MaxAttempts = parseInt(getEnv("DUALWRITE_MAX_ATTEMPTS", "3"), 3)
	cfg.DualWrite.BaseDelay = parseDuration(getEnv("DUALWRITE_BASE_DELAY", "100ms"), 100*time.Millisecond)
	cfg.DualWrite.MaxDelay = parseDuration(getEnv("DUALWRITE_MAX_DELAY", "5s"), 5*time.Second)
	cfg.DualWrite.Strict = getEnv("DUALWRITE_STRICT", "false") == "true"

	cfg.Audit.Interval = parseDuration(getEnv("AUDIT_INTERVAL", "60s"), 60*time.Second)
	cfg.Audit.DriftThreshold = int64(parseInt(getEnv("AUDIT_DRIFT_THRESHOLD", "100"), 100))
	cfg.Audit.WebhookURL = getEnv("AUDIT_WEBHOOK_URL", "")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "infrasight-sync")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "infrasight/readings/batch")
	cfg.MQTT.QoS = 1

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
