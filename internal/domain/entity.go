package domain

import (
	"database/sql"
	"time"
)

// Device statuses shared by both stores. The target store additionally uses
// StatusRetired as the terminal status stamped by a soft delete.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusError   = "error"
	StatusUnknown = "unknown"
	StatusRetired = "retired"
)

// LegacyDevice is the flat row shape of the legacy `devices` table.
// The legacy store is the source of truth during the migration.
type LegacyDevice struct {
	DeviceID        string         `db:"device_id"`
	DeviceName      string         `db:"device_name"`
	DeviceType      string         `db:"device_type"`
	Building        sql.NullString `db:"building"`
	Floor           sql.NullString `db:"floor"`
	Room            sql.NullString `db:"room"`
	Department      sql.NullString `db:"department"`
	Status          string         `db:"status"`
	Tags            []string       `db:"tags"`
	FirmwareVersion sql.NullString `db:"firmware_version"`
	BatteryLevel    sql.NullInt64  `db:"battery_level"`
	LastSeen        sql.NullTime   `db:"last_seen"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// DeviceRecord is the row shape of the target `device_records` table.
// Location, health, audit and compliance fields are grouped by column prefix;
// every record is derivable from a LegacyDevice by the mapper alone.
type DeviceRecord struct {
	DeviceID   string `db:"device_id"`
	DeviceName string `db:"device_name"`
	DeviceType string `db:"device_type"`

	// location group
	LocationBuilding string `db:"location_building"`
	LocationFloor    string `db:"location_floor"`
	LocationRoom     string `db:"location_room"`

	// health group
	HealthStatus          string        `db:"health_status"`
	HealthBatteryLevel    sql.NullInt64 `db:"health_battery_level"`
	HealthFirmwareVersion string        `db:"health_firmware_version"`
	HealthLastSeen        sql.NullTime  `db:"health_last_seen"`

	// audit group
	AuditCreatedAt  time.Time      `db:"audit_created_at"`
	AuditUpdatedAt  time.Time      `db:"audit_updated_at"`
	AuditMigratedAt time.Time      `db:"audit_migrated_at"`
	AuditDeletedAt  sql.NullTime   `db:"audit_deleted_at"`
	AuditDeletedBy  sql.NullString `db:"audit_deleted_by"`

	// compliance group
	ComplianceDepartment    string   `db:"compliance_department"`
	ComplianceTags          []string `db:"compliance_tags"`
	ComplianceRetentionDays int      `db:"compliance_retention_days"`
}

// IsDeleted reports whether the record has been soft-deleted on the target side.
func (r *DeviceRecord) IsDeleted() bool {
	return r.AuditDeletedAt.Valid
}

// LegacyDevicePatch is a typed partial update against the legacy store.
// Nil fields are untouched. The mapper owns the translation of each field
// to its target-store column, so ad-hoc string paths never leak into writes.
type LegacyDevicePatch struct {
	DeviceName      *string
	DeviceType      *string
	Building        *string
	Floor           *string
	Room            *string
	Department      *string
	Status          *string
	Tags            *[]string
	FirmwareVersion *string
	BatteryLevel    *int64
}

// IsEmpty reports whether the patch changes nothing.
func (p *LegacyDevicePatch) IsEmpty() bool {
	return p.DeviceName == nil && p.DeviceType == nil && p.Building == nil &&
		p.Floor == nil && p.Room == nil && p.Department == nil &&
		p.Status == nil && p.Tags == nil && p.FirmwareVersion == nil &&
		p.BatteryLevel == nil
}

// TargetFieldUpdate is one translated column assignment for the target store.
type TargetFieldUpdate struct {
	Column string
	Value  any
}
