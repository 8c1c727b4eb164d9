package dualwrite_test

import (
	"context"
	"time"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
)

// fakeLegacyRepo records calls and fails on demand. CreateDevice returns a
// committed row with server-side fields filled in, like the real store does.
type fakeLegacyRepo struct {
	failWith error

	created *domain.LegacyDevice
	updated *domain.LegacyDevicePatch
	deleted []string
}

var _ repository.LegacyDevicesRepository = (*fakeLegacyRepo)(nil)

func (f *fakeLegacyRepo) CreateDevice(ctx context.Context, device *domain.LegacyDevice) (*domain.LegacyDevice, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	committed := *device
	if committed.DeviceID == "" {
		committed.DeviceID = "generated-id"
	}
	if committed.Status == "" {
		committed.Status = domain.StatusOffline
	}
	committed.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	committed.UpdatedAt = committed.CreatedAt
	f.created = &committed
	return &committed, nil
}

func (f *fakeLegacyRepo) UpdateDevice(ctx context.Context, deviceID string, patch *domain.LegacyDevicePatch) (*domain.LegacyDevice, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.updated = patch
	committed := &domain.LegacyDevice{
		DeviceID:   deviceID,
		DeviceName: "after-update",
		DeviceType: "temperature",
		UpdatedAt:  time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC),
	}
	if patch.DeviceName != nil {
		committed.DeviceName = *patch.DeviceName
	}
	return committed, nil
}

func (f *fakeLegacyRepo) DeleteDevice(ctx context.Context, deviceID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.deleted = append(f.deleted, deviceID)
	return nil
}

func (f *fakeLegacyRepo) GetDevice(ctx context.Context, deviceID string) (*domain.LegacyDevice, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeLegacyRepo) CountDevices(ctx context.Context) (int64, error)  { return 0, nil }
func (f *fakeLegacyRepo) CountReadings(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeLegacyRepo) Ping(ctx context.Context) error                   { return nil }

// fakeTargetRepo can fail the first N write attempts to exercise the retrier.
type fakeTargetRepo struct {
	failAttempts int
	failWith     error

	writeCalls int
	upserted   []*domain.DeviceRecord
	updates    map[string][]domain.TargetFieldUpdate
}

var _ repository.TargetRecordsRepository = (*fakeTargetRepo)(nil)

func newFakeTargetRepo() *fakeTargetRepo {
	return &fakeTargetRepo{updates: map[string][]domain.TargetFieldUpdate{}}
}

func (f *fakeTargetRepo) failNow() error {
	f.writeCalls++
	if f.failWith != nil && (f.failAttempts == 0 || f.writeCalls <= f.failAttempts) {
		return f.failWith
	}
	return nil
}

func (f *fakeTargetRepo) UpsertRecord(ctx context.Context, record *domain.DeviceRecord) error {
	if err := f.failNow(); err != nil {
		return err
	}
	f.upserted = append(f.upserted, record)
	return nil
}

func (f *fakeTargetRepo) ApplyFieldUpdates(ctx context.Context, deviceID string, updates []domain.TargetFieldUpdate) error {
	if err := f.failNow(); err != nil {
		return err
	}
	f.updates[deviceID] = append(f.updates[deviceID], updates...)
	return nil
}

func (f *fakeTargetRepo) GetRecord(ctx context.Context, deviceID string) (*domain.DeviceRecord, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeTargetRepo) FindExisting(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (f *fakeTargetRepo) TouchLastSeen(ctx context.Context, ids []string, seenAt time.Time) error {
	return nil
}

func (f *fakeTargetRepo) CountRecords(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeTargetRepo) Ping(ctx context.Context) error                  { return nil }
