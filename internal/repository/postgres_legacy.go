package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

const legacyDeviceColumns = `
	device_id::text,
	device_name,
	device_type,
	building,
	floor,
	room,
	department,
	status,
	tags,
	firmware_version,
	battery_level,
	last_seen,
	created_at,
	updated_at`

// PostgresLegacyDevicesRepo implements LegacyDevicesRepository against the
// legacy flat `devices` table.
type PostgresLegacyDevicesRepo struct {
	db *sql.DB
}

func NewPostgresLegacyDevicesRepo(db *sql.DB) *PostgresLegacyDevicesRepo {
	return &PostgresLegacyDevicesRepo{db: db}
}

var _ LegacyDevicesRepository = (*PostgresLegacyDevicesRepo)(nil)

func (r *PostgresLegacyDevicesRepo) CreateDevice(ctx context.Context, device *domain.LegacyDevice) (*domain.LegacyDevice, error) {
	if device.DeviceID == "" {
		device.DeviceID = uuid.NewString()
	}
	if device.Status == "" {
		device.Status = domain.StatusOffline
	}
	tags := device.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO devices (
			device_id, device_name, device_type,
			building, floor, room, department,
			status, tags, firmware_version, battery_level,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING ` + legacyDeviceColumns

	row := r.db.QueryRowContext(ctx, query,
		device.DeviceID,
		device.DeviceName,
		device.DeviceType,
		device.Building,
		device.Floor,
		device.Room,
		device.Department,
		device.Status,
		pq.Array(tags),
		device.FirmwareVersion,
		device.BatteryLevel,
	)
	committed, err := scanLegacyDevice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert device: %w", err)
	}
	return committed, nil
}

func (r *PostgresLegacyDevicesRepo) UpdateDevice(ctx context.Context, deviceID string, patch *domain.LegacyDevicePatch) (*domain.LegacyDevice, error) {
	set := []string{}
	args := []any{}
	argN := 1
	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argN))
		args = append(args, value)
		argN++
	}

	if patch.DeviceName != nil {
		add("device_name", *patch.DeviceName)
	}
	if patch.DeviceType != nil {
		add("device_type", *patch.DeviceType)
	}
	if patch.Building != nil {
		add("building", *patch.Building)
	}
	if patch.Floor != nil {
		add("floor", *patch.Floor)
	}
	if patch.Room != nil {
		add("room", *patch.Room)
	}
	if patch.Department != nil {
		add("department", *patch.Department)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Tags != nil {
		add("tags", pq.Array(*patch.Tags))
	}
	if patch.FirmwareVersion != nil {
		add("firmware_version", *patch.FirmwareVersion)
	}
	if patch.BatteryLevel != nil {
		add("battery_level", *patch.BatteryLevel)
	}
	set = append(set, "updated_at = now()")

	query := fmt.Sprintf(`
		UPDATE devices
		SET %s
		WHERE device_id = $%d
		RETURNING %s`, strings.Join(set, ", "), argN, legacyDeviceColumns)
	args = append(args, deviceID)

	committed, err := scanLegacyDevice(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	return committed, nil
}

func (r *PostgresLegacyDevicesRepo) DeleteDevice(ctx context.Context, deviceID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE device_id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresLegacyDevicesRepo) GetDevice(ctx context.Context, deviceID string) (*domain.LegacyDevice, error) {
	query := `SELECT ` + legacyDeviceColumns + ` FROM devices WHERE device_id = $1`
	device, err := scanLegacyDevice(r.db.QueryRowContext(ctx, query, deviceID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}

func (r *PostgresLegacyDevicesRepo) CountDevices(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return n, nil
}

func (r *PostgresLegacyDevicesRepo) CountReadings(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return n, nil
}

func (r *PostgresLegacyDevicesRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLegacyDevice(row rowScanner) (*domain.LegacyDevice, error) {
	var d domain.LegacyDevice
	err := row.Scan(
		&d.DeviceID,
		&d.DeviceName,
		&d.DeviceType,
		&d.Building,
		&d.Floor,
		&d.Room,
		&d.Department,
		&d.Status,
		pq.Array(&d.Tags),
		&d.FirmwareVersion,
		&d.BatteryLevel,
		&d.LastSeen,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
