package ingest

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
)

const idempotencyPrefix = "ingest:idem:"

// lookupIdempotent returns a previously-computed report for a duplicate
// batch. Cache trouble is treated as a miss; dedup is best effort.
func (p *Pipeline) lookupIdempotent(ctx context.Context, key string) (*domain.BatchReport, bool) {
	if key == "" || p.kv == nil {
		return nil, false
	}
	raw, err := p.kv.Get(ctx, idempotencyPrefix+key)
	if err != nil {
		return nil, false
	}
	var report domain.BatchReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		p.logger.Warn("corrupt idempotency cache entry",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return &report, true
}

func (p *Pipeline) storeIdempotent(ctx context.Context, key string, report *domain.BatchReport) {
	if key == "" || p.kv == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := p.kv.Set(ctx, idempotencyPrefix+key, string(raw), p.idemTTL); err != nil {
		p.logger.Warn("idempotency cache write failed",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
	}
}
