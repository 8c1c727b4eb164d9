package ingest_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
	"github.com/Amadou-dot/infrasight-sub002/internal/store"
)

// fakeRecordsRepo answers existence checks from a fixed known set and
// records last_seen touches.
type fakeRecordsRepo struct {
	known       map[string]struct{}
	lookupErr   error
	touchErr    error
	touchedIDs  [][]string
	lookupCalls int
}

var _ repository.TargetRecordsRepository = (*fakeRecordsRepo)(nil)

func newFakeRecordsRepo(knownIDs ...string) *fakeRecordsRepo {
	known := make(map[string]struct{}, len(knownIDs))
	for _, id := range knownIDs {
		known[id] = struct{}{}
	}
	return &fakeRecordsRepo{known: known}
}

func (f *fakeRecordsRepo) FindExisting(ctx context.Context, ids []string) (map[string]struct{}, error) {
	f.lookupCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := map[string]struct{}{}
	for _, id := range ids {
		if _, ok := f.known[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeRecordsRepo) TouchLastSeen(ctx context.Context, ids []string, seenAt time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touchedIDs = append(f.touchedIDs, ids)
	return nil
}

func (f *fakeRecordsRepo) UpsertRecord(ctx context.Context, r *domain.DeviceRecord) error {
	return errors.New("not implemented")
}
func (f *fakeRecordsRepo) ApplyFieldUpdates(ctx context.Context, id string, u []domain.TargetFieldUpdate) error {
	return errors.New("not implemented")
}
func (f *fakeRecordsRepo) GetRecord(ctx context.Context, id string) (*domain.DeviceRecord, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeRecordsRepo) CountRecords(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeRecordsRepo) Ping(ctx context.Context) error                  { return nil }

// fakeReadingsRepo records every sub-batch; failBatches marks 1-based commit
// calls that should fail; shortfall subtracts rows from one commit to mimic
// conflict-skipped duplicates.
type fakeReadingsRepo struct {
	batches     [][]*domain.SensorReading
	failBatches map[int]error
	shortfall   map[int]int
}

var _ repository.ReadingsRepository = (*fakeReadingsRepo)(nil)

func newFakeReadingsRepo() *fakeReadingsRepo {
	return &fakeReadingsRepo{failBatches: map[int]error{}, shortfall: map[int]int{}}
}

func (f *fakeReadingsRepo) InsertBatch(ctx context.Context, readings []*domain.SensorReading) (int, error) {
	call := len(f.batches) + 1
	if err, ok := f.failBatches[call]; ok {
		f.batches = append(f.batches, nil)
		return 0, err
	}
	f.batches = append(f.batches, readings)
	return len(readings) - f.shortfall[call], nil
}

func (f *fakeReadingsRepo) CountReadings(ctx context.Context) (int64, error) { return 0, nil }

// commitCalls counts InsertBatch invocations including failed ones.
func (f *fakeReadingsRepo) commitCalls() int { return len(f.batches) }

// fakeKV is the in-memory stand-in for the Redis idempotency cache.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

var _ store.KV = (*fakeKV)(nil)

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.sets++
	return nil
}
