// Package ingest implements the bulk reading ingestion pipeline: validate
// against known entities, transform, commit in bounded sub-batches, and
// aggregate a partial-failure report.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/config"
	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/mapper"
	"github.com/Amadou-dot/infrasight-sub002/internal/metrics"
	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
	"github.com/Amadou-dot/infrasight-sub002/internal/store"
)

// ErrBatchTooLarge rejects an oversized request before any processing.
var ErrBatchTooLarge = errors.New("batch exceeds maximum item count")

const reasonEntityNotFound = "entity not found"

// DefaultSource is stamped on readings whose item and batch carry no source.
const DefaultSource = "api"

// Pipeline is constructed once and shared by the HTTP handler and the MQTT
// consumer. Sub-batches are committed sequentially to bound peak load on the
// store.
type Pipeline struct {
	records  repository.TargetRecordsRepository
	readings repository.ReadingsRepository
	kv       store.KV
	metrics  *metrics.Metrics
	logger   *zap.Logger

	maxItems     int
	subBatchSize int
	errorCap     int
	idemTTL      time.Duration
}

func NewPipeline(
	records repository.TargetRecordsRepository,
	readings repository.ReadingsRepository,
	kv store.KV,
	cfg config.IngestConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		records:      records,
		readings:     readings,
		kv:           kv,
		metrics:      m,
		logger:       logger,
		maxItems:     cfg.MaxItems,
		subBatchSize: cfg.SubBatchSize,
		errorCap:     cfg.ErrorCap,
		idemTTL:      cfg.IdempotencyTTL,
	}
}

// Ingest runs the full pipeline for one batch. Per-item and sub-batch
// failures land in the report; only an oversized batch or a failed entity
// lookup surface as an error.
func (p *Pipeline) Ingest(ctx context.Context, req *domain.IngestRequest) (*domain.BatchReport, error) {
	if len(req.Readings) > p.maxItems {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(req.Readings), p.maxItems)
	}

	if cached, ok := p.lookupIdempotent(ctx, req.IdempotencyKey); ok {
		p.logger.Info("duplicate batch recognized by idempotency key",
			zap.String("idempotency_key", req.IdempotencyKey))
		return cached, nil
	}

	report, err := p.process(ctx, req)
	if err != nil {
		return nil, err
	}

	p.storeIdempotent(ctx, req.IdempotencyKey, report)
	if p.metrics != nil {
		p.metrics.ReadingsInserted.Add(float64(report.Inserted))
		p.metrics.ReadingsRejected.Add(float64(report.Rejected))
	}
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, req *domain.IngestRequest) (*domain.BatchReport, error) {
	known, err := p.records.FindExisting(ctx, distinctEntityIDs(req.Readings))
	if err != nil {
		return nil, fmt.Errorf("entity lookup failed: %w", err)
	}

	source := req.BatchSource
	if source == "" {
		source = DefaultSource
	}
	now := time.Now().UTC()

	var (
		accepted      []*domain.SensorReading
		acceptedIndex []int
		allErrors     []domain.ItemError
		rejected      int
		touched       []string
		touchedSeen   = map[string]struct{}{}
	)

	for i := range req.Readings {
		item := &req.Readings[i]
		if _, ok := known[item.EntityID]; !ok {
			rejected++
			allErrors = append(allErrors, domain.ItemError{
				Index: i, EntityID: item.EntityID, Error: reasonEntityNotFound,
			})
			continue
		}
		reading, err := mapper.MapReading(item, source, now)
		if err != nil {
			rejected++
			allErrors = append(allErrors, domain.ItemError{
				Index: i, EntityID: item.EntityID, Error: err.Error(),
			})
			continue
		}
		accepted = append(accepted, reading)
		acceptedIndex = append(acceptedIndex, i)
		if _, ok := touchedSeen[item.EntityID]; !ok {
			touchedSeen[item.EntityID] = struct{}{}
			touched = append(touched, item.EntityID)
		}
	}

	inserted := 0
	for start := 0; start < len(accepted); start += p.subBatchSize {
		end := start + p.subBatchSize
		if end > len(accepted) {
			end = len(accepted)
		}
		chunk := accepted[start:end]

		n, err := p.readings.InsertBatch(ctx, chunk)
		if err != nil {
			// Per-item attribution is unavailable when the commit itself
			// fails; one synthetic entry points at the sub-batch's first
			// original index.
			rejected += len(chunk)
			allErrors = append(allErrors, domain.ItemError{
				Index: acceptedIndex[start],
				Error: fmt.Sprintf("sub-batch insert failed: %v", err),
			})
			p.logger.Warn("sub-batch insert failed",
				zap.Int("offset", start),
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
			continue
		}
		inserted += n
		if n < len(chunk) {
			skipped := len(chunk) - n
			rejected += skipped
			allErrors = append(allErrors, domain.ItemError{
				Index: acceptedIndex[start],
				Error: fmt.Sprintf("%d duplicate readings skipped", skipped),
			})
		}
	}

	if inserted > 0 {
		// Best effort: a failed liveness touch never fails the ingestion call.
		if err := p.records.TouchLastSeen(ctx, touched, now); err != nil {
			p.logger.Warn("last_seen touch failed",
				zap.Int("entities", len(touched)),
				zap.Error(err),
			)
		}
	}

	report := &domain.BatchReport{
		Inserted:    inserted,
		Rejected:    rejected,
		Errors:      allErrors,
		TotalErrors: len(allErrors),
	}
	if len(report.Errors) > p.errorCap {
		report.Errors = report.Errors[:p.errorCap]
	}
	if report.Errors == nil {
		report.Errors = []domain.ItemError{}
	}
	return report, nil
}

func distinctEntityIDs(items []domain.ReadingItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for i := range items {
		id := items[i].EntityID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
