// Package audit provides the read-only consistency surface over the two
// stores: liveness probes and aggregate drift counts. It is deliberately
// coarse; per-record reconciliation is out of scope for the migration.
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
)

// HealthStatus is the per-store liveness probe result.
type HealthStatus struct {
	Healthy  bool `json:"healthy"`
	LegacyUp bool `json:"legacy_up"`
	TargetUp bool `json:"target_up"`
}

// StoreCounts holds independent counts for one record kind. A positive Diff
// means the legacy store has outpaced the target, consistent with the
// tolerated-secondary-failure design.
type StoreCounts struct {
	Legacy int64 `json:"legacy"`
	Target int64 `json:"target"`
	Diff   int64 `json:"diff"`
}

// DriftStats aggregates drift per record kind.
type DriftStats struct {
	Entities StoreCounts `json:"entities"`
	Readings StoreCounts `json:"readings"`
}

// Auditor reconciles nothing; it only counts and probes.
type Auditor struct {
	legacy   repository.LegacyDevicesRepository
	target   repository.TargetRecordsRepository
	readings repository.ReadingsRepository
	logger   *zap.Logger
}

func NewAuditor(
	legacy repository.LegacyDevicesRepository,
	target repository.TargetRecordsRepository,
	readings repository.ReadingsRepository,
	logger *zap.Logger,
) *Auditor {
	return &Auditor{legacy: legacy, target: target, readings: readings, logger: logger}
}

// Health probes both stores with one cheap round trip each.
func (a *Auditor) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		LegacyUp: a.legacy.Ping(ctx) == nil,
		TargetUp: a.target.Ping(ctx) == nil,
	}
	status.Healthy = status.LegacyUp && status.TargetUp
	return status
}

// DriftStats counts entities and readings independently in both stores.
func (a *Auditor) DriftStats(ctx context.Context) (DriftStats, error) {
	var stats DriftStats

	legacyEntities, err := a.legacy.CountDevices(ctx)
	if err != nil {
		return stats, fmt.Errorf("legacy entity count: %w", err)
	}
	targetEntities, err := a.target.CountRecords(ctx)
	if err != nil {
		return stats, fmt.Errorf("target entity count: %w", err)
	}
	legacyReadings, err := a.legacy.CountReadings(ctx)
	if err != nil {
		return stats, fmt.Errorf("legacy reading count: %w", err)
	}
	targetReadings, err := a.readings.CountReadings(ctx)
	if err != nil {
		return stats, fmt.Errorf("target reading count: %w", err)
	}

	stats.Entities = StoreCounts{
		Legacy: legacyEntities,
		Target: targetEntities,
		Diff:   legacyEntities - targetEntities,
	}
	stats.Readings = StoreCounts{
		Legacy: legacyReadings,
		Target: targetReadings,
		Diff:   legacyReadings - targetReadings,
	}
	return stats, nil
}
