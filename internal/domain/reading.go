package domain

import (
	"database/sql"
	"time"
)

// ReadingItem is one time-series measurement as submitted by a client or an
// MQTT publisher. Readings are write-once; the pipeline never updates them.
type ReadingItem struct {
	EntityID          string   `json:"entity_id"`
	Type              string   `json:"type"`
	Unit              string   `json:"unit,omitempty"`
	Timestamp         string   `json:"timestamp"`
	Value             float64  `json:"value"`
	Source            string   `json:"source,omitempty"`
	ConfidenceScore   *float64 `json:"confidence_score,omitempty"`
	BatteryLevel      *int64   `json:"battery_level,omitempty"`
	SignalStrength    *int64   `json:"signal_strength,omitempty"`
	RawValue          *float64 `json:"raw_value,omitempty"`
	CalibrationOffset *float64 `json:"calibration_offset,omitempty"`
}

// IngestRequest is the bulk ingestion payload.
type IngestRequest struct {
	Readings       []ReadingItem `json:"readings"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
	BatchSource    string        `json:"batch_source,omitempty"`
}

// SensorReading is the stored row shape of the target `sensor_readings` table,
// produced from a ReadingItem by the reading mapper.
type SensorReading struct {
	ID                int64           `db:"id"`
	DeviceID          string          `db:"device_id"`
	ReadingType       string          `db:"reading_type"`
	Unit              string          `db:"unit"`
	Value             float64         `db:"value"`
	RawValue          sql.NullFloat64 `db:"raw_value"`
	CalibrationOffset sql.NullFloat64 `db:"calibration_offset"`
	Source            string          `db:"source"`
	RecordedAt        time.Time       `db:"recorded_at"`
	IngestedAt        time.Time       `db:"ingested_at"`

	// quality block
	QualityValid        bool            `db:"quality_valid"`
	QualityConfidence   float64         `db:"quality_confidence"`
	QualityAnomaly      bool            `db:"quality_anomaly"`
	QualityAnomalyScore sql.NullFloat64 `db:"quality_anomaly_score"`

	BatteryLevel   sql.NullInt64 `db:"battery_level"`
	SignalStrength sql.NullInt64 `db:"signal_strength"`
}
