package repository

import (
	"context"
	"time"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

// TargetRecordsRepository is the secondary store being migrated to. Writes
// here are retried and tolerated on failure; deletion is a soft delete so
// the store retains every record for historical audit.
type TargetRecordsRepository interface {
	// UpsertRecord writes a full mapped record. Upsert semantics keep the
	// dual-write path idempotent when the coordinator retries.
	UpsertRecord(ctx context.Context, record *domain.DeviceRecord) error

	// ApplyFieldUpdates applies mapper-translated column assignments
	// (partial updates and the soft-delete stamp both flow through here).
	ApplyFieldUpdates(ctx context.Context, deviceID string, updates []domain.TargetFieldUpdate) error

	GetRecord(ctx context.Context, deviceID string) (*domain.DeviceRecord, error)

	// FindExisting returns the subset of ids that exist and are not
	// soft-deleted, resolved in a single query.
	FindExisting(ctx context.Context, ids []string) (map[string]struct{}, error)

	// TouchLastSeen batch-updates health_last_seen for the given ids.
	TouchLastSeen(ctx context.Context, ids []string, seenAt time.Time) error

	CountRecords(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

// ReadingsRepository stores time-series readings in the target store.
type ReadingsRepository interface {
	// InsertBatch commits one sub-batch with unordered semantics: a duplicate
	// or conflicting row must not block the rest of the sub-batch. Returns
	// the number of rows actually inserted.
	InsertBatch(ctx context.Context, readings []*domain.SensorReading) (int, error)

	CountReadings(ctx context.Context) (int64, error)
}
