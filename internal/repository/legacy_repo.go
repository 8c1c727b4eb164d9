package repository

import (
	"context"
	"errors"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

// ErrNotFound is returned when a device id matches no row.
var ErrNotFound = errors.New("record not found")

// LegacyDevicesRepository is the primary (source-of-truth) store during the
// migration. Writes here must succeed for any mutation to succeed; deletion
// is a hard delete. Strong-typed models only, no map[string]any.
type LegacyDevicesRepository interface {
	// CreateDevice inserts and returns the committed row. The committed row,
	// not the caller's input, is what the mapper derives the target record from.
	CreateDevice(ctx context.Context, device *domain.LegacyDevice) (*domain.LegacyDevice, error)

	// UpdateDevice applies a typed partial update and returns the committed row.
	UpdateDevice(ctx context.Context, deviceID string, patch *domain.LegacyDevicePatch) (*domain.LegacyDevice, error)

	// DeleteDevice removes the row entirely.
	DeleteDevice(ctx context.Context, deviceID string) error

	GetDevice(ctx context.Context, deviceID string) (*domain.LegacyDevice, error)

	// CountDevices / CountReadings feed the consistency auditor.
	CountDevices(ctx context.Context) (int64, error)
	CountReadings(ctx context.Context) (int64, error)

	// Ping is the auditor's liveness probe (single cheap round trip).
	Ping(ctx context.Context) error
}
