package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/config"
	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/ingest"
	"github.com/Amadou-dot/infrasight-sub002/internal/store"
)

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		MaxItems:       10000,
		SubBatchSize:   100,
		ErrorCap:       10,
		IdempotencyTTL: time.Hour,
	}
}

func newPipeline(records *fakeRecordsRepo, readings *fakeReadingsRepo, kv store.KV, cfg config.IngestConfig) *ingest.Pipeline {
	return ingest.NewPipeline(records, readings, kv, cfg, nil, zap.NewNop())
}

func validItem(entityID string) domain.ReadingItem {
	return domain.ReadingItem{
		EntityID:  entityID,
		Type:      "temperature",
		Timestamp: "2026-03-01T10:00:00Z",
		Value:     21.5,
	}
}

func TestIngest_AllEntitiesUnknown(t *testing.T) {
	records := newFakeRecordsRepo() // empty known set
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	req := &domain.IngestRequest{Readings: []domain.ReadingItem{
		validItem("ghost-1"), validItem("ghost-2"), validItem("ghost-3"),
	}}

	report, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 3, report.Rejected)
	assert.Equal(t, 3, report.TotalErrors)
	assert.Zero(t, readings.commitCalls(), "no commit attempt for zero accepted items")
	assert.Empty(t, records.touchedIDs, "no last_seen touch without inserts")
}

func TestIngest_SubBatchBoundaries(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	items := make([]domain.ReadingItem, 250)
	for i := range items {
		items[i] = validItem("e1")
		items[i].Timestamp = fmt.Sprintf("2026-03-01T10:%02d:%02dZ", i/60, i%60)
	}

	report, err := p.Ingest(context.Background(), &domain.IngestRequest{Readings: items})
	require.NoError(t, err)

	assert.Equal(t, 250, report.Inserted)
	assert.Equal(t, 0, report.Rejected)
	require.Equal(t, 3, readings.commitCalls())
	assert.Len(t, readings.batches[0], 100)
	assert.Len(t, readings.batches[1], 100)
	assert.Len(t, readings.batches[2], 50)
}

func TestIngest_MixedBatchExample(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	req := &domain.IngestRequest{Readings: []domain.ReadingItem{
		validItem("e1"),
		validItem("missing"),
		validItem("e1"),
	}}
	req.Readings[2].Timestamp = "2026-03-01T10:00:01Z"

	report, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.TotalErrors)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Index, "error index is the original batch index")
	assert.Equal(t, "missing", report.Errors[0].EntityID)
	assert.Equal(t, "entity not found", report.Errors[0].Error)

	require.Len(t, records.touchedIDs, 1)
	assert.Equal(t, []string{"e1"}, records.touchedIDs[0])
}

func TestIngest_OversizedBatchRejectedUpFront(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	cfg := testIngestConfig()
	cfg.MaxItems = 2
	p := newPipeline(records, readings, nil, cfg)

	req := &domain.IngestRequest{Readings: []domain.ReadingItem{
		validItem("e1"), validItem("e1"), validItem("e1"),
	}}

	_, err := p.Ingest(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrBatchTooLarge)
	assert.Zero(t, records.lookupCalls, "no processing of an oversized request")
	assert.Zero(t, readings.commitCalls())
}

func TestIngest_TransformFailureIsPerItemRejection(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	bad := validItem("e1")
	bad.Timestamp = "not-a-time"
	req := &domain.IngestRequest{Readings: []domain.ReadingItem{
		validItem("e1"), bad,
	}}

	report, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Index)
	assert.Contains(t, report.Errors[0].Error, "invalid timestamp")
}

func TestIngest_SubBatchCommitFailureCountsWholeChunk(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	readings.failBatches[2] = errors.New("connection reset")
	cfg := testIngestConfig()
	cfg.SubBatchSize = 100
	p := newPipeline(records, readings, nil, cfg)

	items := make([]domain.ReadingItem, 250)
	for i := range items {
		items[i] = validItem("e1")
		items[i].Timestamp = fmt.Sprintf("2026-03-01T11:%02d:%02dZ", i/60, i%60)
	}

	report, err := p.Ingest(context.Background(), &domain.IngestRequest{Readings: items})
	require.NoError(t, err)

	assert.Equal(t, 150, report.Inserted)
	assert.Equal(t, 100, report.Rejected)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 100, report.Errors[0].Index, "synthetic error points at the sub-batch's first original index")
	assert.Contains(t, report.Errors[0].Error, "sub-batch insert failed")
	assert.Equal(t, 3, readings.commitCalls(), "a failed sub-batch must not stop the rest")
}

func TestIngest_DuplicateShortfallCountsAsRejected(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	readings.shortfall[1] = 2
	p := newPipeline(records, readings, nil, testIngestConfig())

	items := make([]domain.ReadingItem, 10)
	for i := range items {
		items[i] = validItem("e1")
		items[i].Timestamp = fmt.Sprintf("2026-03-01T12:00:%02dZ", i)
	}

	report, err := p.Ingest(context.Background(), &domain.IngestRequest{Readings: items})
	require.NoError(t, err)

	assert.Equal(t, 8, report.Inserted)
	assert.Equal(t, 2, report.Rejected)
}

func TestIngest_ErrorCapTruncatesListNotCounts(t *testing.T) {
	records := newFakeRecordsRepo() // nothing known
	readings := newFakeReadingsRepo()
	cfg := testIngestConfig()
	cfg.ErrorCap = 3
	p := newPipeline(records, readings, nil, cfg)

	items := make([]domain.ReadingItem, 7)
	for i := range items {
		items[i] = validItem(fmt.Sprintf("ghost-%d", i))
	}

	report, err := p.Ingest(context.Background(), &domain.IngestRequest{Readings: items})
	require.NoError(t, err)

	assert.Len(t, report.Errors, 3)
	assert.Equal(t, 7, report.TotalErrors)
	assert.Equal(t, 7, report.Rejected, "rejected count is never truncated")
}

func TestIngest_TouchFailureIsBestEffort(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	records.touchErr = errors.New("deadlock detected")
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	report, err := p.Ingest(context.Background(), &domain.IngestRequest{
		Readings: []domain.ReadingItem{validItem("e1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}

func TestIngest_EntityLookupFailureIsRequestLevel(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	records.lookupErr = errors.New("store offline")
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	_, err := p.Ingest(context.Background(), &domain.IngestRequest{
		Readings: []domain.ReadingItem{validItem("e1")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity lookup failed")
}

func TestIngest_IdempotencyKeyReturnsCachedReport(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	kv := newFakeKV()
	p := newPipeline(records, readings, kv, testIngestConfig())

	req := &domain.IngestRequest{
		Readings:       []domain.ReadingItem{validItem("e1")},
		IdempotencyKey: "3f1a9d2c-0000-4000-8000-000000000001",
	}

	first, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)
	assert.Equal(t, 1, kv.sets)

	second, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, readings.commitCalls(), "duplicate batch must not re-commit")
}

func TestIngest_EmptyBatchProducesEmptyReport(t *testing.T) {
	records := newFakeRecordsRepo("e1")
	readings := newFakeReadingsRepo()
	p := newPipeline(records, readings, nil, testIngestConfig())

	report, err := p.Ingest(context.Background(), &domain.IngestRequest{Readings: []domain.ReadingItem{}})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 0, report.Rejected)
	assert.NotNil(t, report.Errors)
	assert.Empty(t, report.Errors)
	assert.Zero(t, readings.commitCalls())
}
