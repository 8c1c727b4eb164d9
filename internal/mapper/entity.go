// Package mapper holds the pure translation layer between the legacy flat
// device rows and the target grouped record shape. Nothing in this package
// performs I/O; every function is deterministic given its inputs.
package mapper

import (
	"database/sql"
	"time"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

// Defaults injected when a legacy record leaves an optional field unset.
const (
	DefaultLocation      = "unknown"
	DefaultDepartment    = "unassigned"
	DefaultRetentionDays = 365
)

// MapEntity derives the target record for a committed legacy device row.
// Total over any schema-valid legacy row: missing optional fields get
// documented defaults, nothing else is synthesized beyond the audit clock.
func MapEntity(legacy *domain.LegacyDevice, now time.Time) *domain.DeviceRecord {
	rec := &domain.DeviceRecord{
		DeviceID:   legacy.DeviceID,
		DeviceName: legacy.DeviceName,
		DeviceType: legacy.DeviceType,

		LocationBuilding: stringOr(legacy.Building, DefaultLocation),
		LocationFloor:    stringOr(legacy.Floor, DefaultLocation),
		LocationRoom:     stringOr(legacy.Room, DefaultLocation),

		HealthStatus:          legacy.Status,
		HealthBatteryLevel:    legacy.BatteryLevel,
		HealthFirmwareVersion: stringOr(legacy.FirmwareVersion, ""),
		HealthLastSeen:        legacy.LastSeen,

		AuditCreatedAt:  legacy.CreatedAt,
		AuditUpdatedAt:  legacy.UpdatedAt,
		AuditMigratedAt: now,

		ComplianceDepartment:    stringOr(legacy.Department, DefaultDepartment),
		ComplianceTags:          legacy.Tags,
		ComplianceRetentionDays: DefaultRetentionDays,
	}
	if rec.HealthStatus == "" {
		rec.HealthStatus = domain.StatusUnknown
	}
	if rec.ComplianceTags == nil {
		rec.ComplianceTags = []string{}
	}
	return rec
}

// MapEntityPatch translates a typed legacy patch into target-store column
// assignments. Only explicitly-set fields appear; the caller adds the
// unconditional audit_updated_at touch via AuditTouch.
func MapEntityPatch(patch *domain.LegacyDevicePatch) []domain.TargetFieldUpdate {
	var updates []domain.TargetFieldUpdate
	add := func(column string, value any) {
		updates = append(updates, domain.TargetFieldUpdate{Column: column, Value: value})
	}

	if patch.DeviceName != nil {
		add("device_name", *patch.DeviceName)
	}
	if patch.DeviceType != nil {
		add("device_type", *patch.DeviceType)
	}
	if patch.Building != nil {
		add("location_building", *patch.Building)
	}
	if patch.Floor != nil {
		add("location_floor", *patch.Floor)
	}
	if patch.Room != nil {
		add("location_room", *patch.Room)
	}
	if patch.Department != nil {
		add("compliance_department", *patch.Department)
	}
	if patch.Status != nil {
		add("health_status", *patch.Status)
	}
	if patch.Tags != nil {
		add("compliance_tags", *patch.Tags)
	}
	if patch.FirmwareVersion != nil {
		add("health_firmware_version", *patch.FirmwareVersion)
	}
	if patch.BatteryLevel != nil {
		add("health_battery_level", *patch.BatteryLevel)
	}
	return updates
}

// AuditTouch is the unconditional update stamp applied alongside every
// partial update on the target side.
func AuditTouch(now time.Time) domain.TargetFieldUpdate {
	return domain.TargetFieldUpdate{Column: "audit_updated_at", Value: now}
}

// SoftDeleteUpdates builds the target-side soft delete: deletion timestamp,
// acting identity, and the terminal status. The legacy store hard-deletes;
// the target keeps the row for historical audit.
func SoftDeleteUpdates(deletedBy string, now time.Time) []domain.TargetFieldUpdate {
	return []domain.TargetFieldUpdate{
		{Column: "audit_deleted_at", Value: now},
		{Column: "audit_deleted_by", Value: deletedBy},
		{Column: "health_status", Value: domain.StatusRetired},
		{Column: "audit_updated_at", Value: now},
	}
}

func stringOr(ns sql.NullString, def string) string {
	if ns.Valid && ns.String != "" {
		return ns.String
	}
	return def
}
