package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

const readingFieldCount = 15

// PostgresReadingsRepo implements ReadingsRepository against the target
// `sensor_readings` table.
type PostgresReadingsRepo struct {
	db *sql.DB
}

func NewPostgresReadingsRepo(db *sql.DB) *PostgresReadingsRepo {
	return &PostgresReadingsRepo{db: db}
}

var _ ReadingsRepository = (*PostgresReadingsRepo)(nil)

// InsertBatch commits one sub-batch with a single multi-row statement.
// ON CONFLICT DO NOTHING gives the unordered semantics the pipeline needs:
// a duplicate row is skipped without blocking the rest of the sub-batch.
// Per-item attribution is unavailable at this level, so a statement failure
// surfaces as one sub-batch error for the pipeline to account for.
func (r *PostgresReadingsRepo) InsertBatch(ctx context.Context, readings []*domain.SensorReading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(readings))
	args := make([]any, 0, len(readings)*readingFieldCount)
	for i, reading := range readings {
		base := i * readingFieldCount
		marks := make([]string, readingFieldCount)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
		args = append(args,
			reading.DeviceID,
			reading.ReadingType,
			reading.Unit,
			reading.Value,
			reading.RawValue,
			reading.CalibrationOffset,
			reading.Source,
			reading.RecordedAt,
			reading.IngestedAt,
			reading.QualityValid,
			reading.QualityConfidence,
			reading.QualityAnomaly,
			reading.QualityAnomalyScore,
			reading.BatteryLevel,
			reading.SignalStrength,
		)
	}

	query := `
		INSERT INTO sensor_readings (
			device_id, reading_type, unit, value,
			raw_value, calibration_offset, source,
			recorded_at, ingested_at,
			quality_valid, quality_confidence, quality_anomaly, quality_anomaly_score,
			battery_level, signal_strength
		) VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (device_id, reading_type, recorded_at) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert readings: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		// Driver without RowsAffected support: assume the whole statement landed.
		return len(readings), nil
	}
	return int(inserted), nil
}

func (r *PostgresReadingsRepo) CountReadings(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return n, nil
}
