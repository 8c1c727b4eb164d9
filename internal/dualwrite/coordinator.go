// Package dualwrite orchestrates entity mutations across the legacy and
// target stores during the live schema migration. The legacy store is
// written first and is fatal on failure; the target store is written second
// through the backoff retrier and is tolerated on failure unless the
// coordinator runs in strict mode.
package dualwrite

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/config"
	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/mapper"
	"github.com/Amadou-dot/infrasight-sub002/internal/metrics"
	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
	"github.com/Amadou-dot/infrasight-sub002/internal/retry"
)

// Mode selects how a target-store failure affects the overall result.
type Mode int

const (
	// Tolerant absorbs target failures after retry exhaustion (default).
	Tolerant Mode = iota
	// Strict propagates target failures into the overall result. The legacy
	// write is never undone either way; there is no distributed rollback.
	Strict
)

// Coordinator sequences every entity mutation: legacy first, then target.
// The target write's input is always the legacy store's committed row, so
// the target attempt never starts before the legacy attempt has resolved.
type Coordinator struct {
	legacy   repository.LegacyDevicesRepository
	target   repository.TargetRecordsRepository
	retryCfg retry.Config
	mode     Mode
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCoordinator(
	legacy repository.LegacyDevicesRepository,
	target repository.TargetRecordsRepository,
	cfg config.DualWriteConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Coordinator {
	mode := Tolerant
	if cfg.Strict {
		mode = Strict
	}
	return &Coordinator{
		legacy: legacy,
		target: target,
		retryCfg: retry.Config{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay,
			MaxDelay:    cfg.MaxDelay,
		},
		mode:    mode,
		metrics: m,
		logger:  logger,
	}
}

// CreateDevice writes the device to the legacy store, then mirrors the
// committed row into the target store. Returns the committed legacy row
// when the legacy write succeeded, nil otherwise.
func (c *Coordinator) CreateDevice(ctx context.Context, device *domain.LegacyDevice) (*domain.LegacyDevice, domain.DualWriteResult) {
	committed, err := c.legacy.CreateDevice(ctx, device)
	if err != nil {
		return nil, c.legacyFailed("create", err)
	}

	record := mapper.MapEntity(committed, time.Now().UTC())
	res := retry.Do(ctx, func(ctx context.Context) error {
		return c.target.UpsertRecord(ctx, record)
	}, c.retryCfg)

	return committed, c.finish("create", committed.DeviceID, res)
}

// UpdateDevice applies a typed partial update to the legacy store, then
// translates the changed fields to target columns plus an unconditional
// audit touch.
func (c *Coordinator) UpdateDevice(ctx context.Context, deviceID string, patch *domain.LegacyDevicePatch) (*domain.LegacyDevice, domain.DualWriteResult) {
	committed, err := c.legacy.UpdateDevice(ctx, deviceID, patch)
	if err != nil {
		return nil, c.legacyFailed("update", err)
	}

	updates := append(mapper.MapEntityPatch(patch), mapper.AuditTouch(time.Now().UTC()))
	res := retry.Do(ctx, func(ctx context.Context) error {
		return c.target.ApplyFieldUpdates(ctx, deviceID, updates)
	}, c.retryCfg)

	return committed, c.finish("update", deviceID, res)
}

// DeleteDevice hard-deletes from the legacy store and soft-deletes on the
// target store. The soft delete is retried like any secondary write: losing
// the deletion marker would corrupt the audit trail.
func (c *Coordinator) DeleteDevice(ctx context.Context, deviceID, deletedBy string) domain.DualWriteResult {
	if err := c.legacy.DeleteDevice(ctx, deviceID); err != nil {
		return c.legacyFailed("delete", err)
	}

	updates := mapper.SoftDeleteUpdates(deletedBy, time.Now().UTC())
	res := retry.Do(ctx, func(ctx context.Context) error {
		return c.target.ApplyFieldUpdates(ctx, deviceID, updates)
	}, c.retryCfg)

	return c.finish("delete", deviceID, res)
}

func (c *Coordinator) legacyFailed(op string, err error) domain.DualWriteResult {
	c.logger.Error("legacy store write failed",
		zap.String("op", op),
		zap.Error(err),
	)
	return domain.DualWriteResult{
		Success:   false,
		Legacy:    domain.StoreResult{Success: false, Error: err.Error()},
		Target:    domain.StoreResult{Success: false},
		Timestamp: time.Now().UTC(),
	}
}

func (c *Coordinator) finish(op, deviceID string, res retry.Result) domain.DualWriteResult {
	result := domain.DualWriteResult{
		Legacy:    domain.StoreResult{Success: true},
		Target:    domain.StoreResult{Success: res.Success},
		Timestamp: time.Now().UTC(),
	}
	if res.Success {
		result.Success = true
		return result
	}

	if res.Error != nil {
		result.Target.Error = res.Error.Error()
	}
	c.logger.Warn("target store write failed after retries",
		zap.String("op", op),
		zap.String("device_id", deviceID),
		zap.Int("attempts", res.Attempts),
		zap.Error(res.Error),
	)
	if c.metrics != nil {
		c.metrics.SecondaryFailures.Inc()
	}

	// Tolerant mode absorbs the secondary failure: the legacy write stands
	// and the auditor will surface the drift.
	result.Success = c.mode == Tolerant
	return result
}
