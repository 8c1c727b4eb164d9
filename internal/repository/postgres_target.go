package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

const deviceRecordColumns = `
	device_id::text,
	device_name,
	device_type,
	location_building,
	location_floor,
	location_room,
	health_status,
	health_battery_level,
	health_firmware_version,
	health_last_seen,
	audit_created_at,
	audit_updated_at,
	audit_migrated_at,
	audit_deleted_at,
	audit_deleted_by,
	compliance_department,
	compliance_tags,
	compliance_retention_days`

// PostgresTargetRecordsRepo implements TargetRecordsRepository against the
// target `device_records` table.
type PostgresTargetRecordsRepo struct {
	db *sql.DB
}

func NewPostgresTargetRecordsRepo(db *sql.DB) *PostgresTargetRecordsRepo {
	return &PostgresTargetRecordsRepo{db: db}
}

var _ TargetRecordsRepository = (*PostgresTargetRecordsRepo)(nil)

func (r *PostgresTargetRecordsRepo) UpsertRecord(ctx context.Context, record *domain.DeviceRecord) error {
	query := `
		INSERT INTO device_records (
			device_id, device_name, device_type,
			location_building, location_floor, location_room,
			health_status, health_battery_level, health_firmware_version, health_last_seen,
			audit_created_at, audit_updated_at, audit_migrated_at,
			compliance_department, compliance_tags, compliance_retention_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (device_id)
		DO UPDATE SET device_name = EXCLUDED.device_name,
		              device_type = EXCLUDED.device_type,
		              location_building = EXCLUDED.location_building,
		              location_floor = EXCLUDED.location_floor,
		              location_room = EXCLUDED.location_room,
		              health_status = EXCLUDED.health_status,
		              health_battery_level = EXCLUDED.health_battery_level,
		              health_firmware_version = EXCLUDED.health_firmware_version,
		              health_last_seen = EXCLUDED.health_last_seen,
		              audit_updated_at = EXCLUDED.audit_updated_at,
		              audit_migrated_at = EXCLUDED.audit_migrated_at,
		              compliance_department = EXCLUDED.compliance_department,
		              compliance_tags = EXCLUDED.compliance_tags,
		              compliance_retention_days = EXCLUDED.compliance_retention_days`

	_, err := r.db.ExecContext(ctx, query,
		record.DeviceID,
		record.DeviceName,
		record.DeviceType,
		record.LocationBuilding,
		record.LocationFloor,
		record.LocationRoom,
		record.HealthStatus,
		record.HealthBatteryLevel,
		record.HealthFirmwareVersion,
		record.HealthLastSeen,
		record.AuditCreatedAt,
		record.AuditUpdatedAt,
		record.AuditMigratedAt,
		record.ComplianceDepartment,
		pq.Array(record.ComplianceTags),
		record.ComplianceRetentionDays,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device record: %w", err)
	}
	return nil
}

func (r *PostgresTargetRecordsRepo) ApplyFieldUpdates(ctx context.Context, deviceID string, updates []domain.TargetFieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	set := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	for i, u := range updates {
		set = append(set, fmt.Sprintf("%s = $%d", u.Column, i+1))
		if tags, ok := u.Value.([]string); ok {
			args = append(args, pq.Array(tags))
		} else {
			args = append(args, u.Value)
		}
	}
	args = append(args, deviceID)

	query := fmt.Sprintf(`UPDATE device_records SET %s WHERE device_id = $%d`,
		strings.Join(set, ", "), len(updates)+1)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply field updates: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTargetRecordsRepo) GetRecord(ctx context.Context, deviceID string) (*domain.DeviceRecord, error) {
	query := `SELECT ` + deviceRecordColumns + ` FROM device_records WHERE device_id = $1`

	var rec domain.DeviceRecord
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&rec.DeviceID,
		&rec.DeviceName,
		&rec.DeviceType,
		&rec.LocationBuilding,
		&rec.LocationFloor,
		&rec.LocationRoom,
		&rec.HealthStatus,
		&rec.HealthBatteryLevel,
		&rec.HealthFirmwareVersion,
		&rec.HealthLastSeen,
		&rec.AuditCreatedAt,
		&rec.AuditUpdatedAt,
		&rec.AuditMigratedAt,
		&rec.AuditDeletedAt,
		&rec.AuditDeletedBy,
		&rec.ComplianceDepartment,
		pq.Array(&rec.ComplianceTags),
		&rec.ComplianceRetentionDays,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device record: %w", err)
	}
	return &rec, nil
}

func (r *PostgresTargetRecordsRepo) FindExisting(ctx context.Context, ids []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	query := `
		SELECT device_id::text
		FROM device_records
		WHERE device_id = ANY($1) AND audit_deleted_at IS NULL`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to look up devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = struct{}{}
	}
	return known, rows.Err()
}

func (r *PostgresTargetRecordsRepo) TouchLastSeen(ctx context.Context, ids []string, seenAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE device_records
		SET health_last_seen = $1
		WHERE device_id = ANY($2)`, seenAt, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to touch last_seen: %w", err)
	}
	return nil
}

func (r *PostgresTargetRecordsRepo) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count device records: %w", err)
	}
	return n, nil
}

func (r *PostgresTargetRecordsRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
