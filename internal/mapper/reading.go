package mapper

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

// Quality defaults for incoming readings.
const (
	DefaultConfidence   = 1.0
	AnomalyConfidence   = 0.5
	DefaultUnitFallback = "raw"
)

// defaultUnits assigns a unit when the publisher omitted one.
var defaultUnits = map[string]string{
	"temperature": "celsius",
	"humidity":    "percent",
	"pressure":    "hpa",
	"co2":         "ppm",
	"voltage":     "volt",
	"current":     "ampere",
	"power":       "watt",
}

// DefaultUnit returns the documented default unit for a reading type.
func DefaultUnit(readingType string) string {
	if u, ok := defaultUnits[readingType]; ok {
		return u
	}
	return DefaultUnitFallback
}

// MapReading transforms one accepted wire item into its stored shape,
// stamping the ingestion timestamp and deriving the quality block.
// The only failure mode is an unparseable timestamp; that surfaces as a
// per-item rejection, never as a batch abort.
func MapReading(item *domain.ReadingItem, source string, now time.Time) (*domain.SensorReading, error) {
	recordedAt, err := time.Parse(time.RFC3339, item.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", item.Timestamp, err)
	}

	unit := item.Unit
	if unit == "" {
		unit = DefaultUnit(item.Type)
	}

	confidence := DefaultConfidence
	if item.ConfidenceScore != nil {
		confidence = *item.ConfidenceScore
	}

	reading := &domain.SensorReading{
		DeviceID:          item.EntityID,
		ReadingType:       item.Type,
		Unit:              unit,
		Value:             item.Value,
		RawValue:          nullFloat(item.RawValue),
		CalibrationOffset: nullFloat(item.CalibrationOffset),
		Source:            source,
		RecordedAt:        recordedAt,
		IngestedAt:        now,

		QualityValid:      true,
		QualityConfidence: confidence,
		QualityAnomaly:    confidence < AnomalyConfidence,

		BatteryLevel:   nullInt(item.BatteryLevel),
		SignalStrength: nullInt(item.SignalStrength),
	}
	if item.Source != "" {
		reading.Source = item.Source
	}
	if reading.QualityAnomaly {
		reading.QualityAnomalyScore = sql.NullFloat64{Float64: 1 - confidence, Valid: true}
	}
	return reading, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
