package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/config"
	"github.com/Amadou-dot/infrasight-sub002/internal/metrics"
)

// Alerter receives drift alerts when the threshold is exceeded.
type Alerter interface {
	DriftAlert(ctx context.Context, stats DriftStats) error
}

// Watcher periodically samples drift, exports it as gauges and fires the
// alerter when entity or reading drift exceeds the configured threshold.
type Watcher struct {
	auditor   *Auditor
	alerter   Alerter
	metrics   *metrics.Metrics
	interval  time.Duration
	threshold int64
	logger    *zap.Logger
}

func NewWatcher(auditor *Auditor, alerter Alerter, m *metrics.Metrics, cfg config.AuditConfig, logger *zap.Logger) *Watcher {
	return &Watcher{
		auditor:   auditor,
		alerter:   alerter,
		metrics:   m,
		interval:  cfg.Interval,
		threshold: cfg.DriftThreshold,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sample(ctx)
		}
	}
}

func (w *Watcher) sample(ctx context.Context) {
	stats, err := w.auditor.DriftStats(ctx)
	if err != nil {
		w.logger.Warn("drift sample failed", zap.Error(err))
		return
	}

	if w.metrics != nil {
		w.metrics.EntityDrift.Set(float64(stats.Entities.Diff))
		w.metrics.ReadingDrift.Set(float64(stats.Readings.Diff))
	}
	w.logger.Info("drift sample",
		zap.Int64("entity_diff", stats.Entities.Diff),
		zap.Int64("reading_diff", stats.Readings.Diff),
	)

	if w.alerter == nil {
		return
	}
	if abs(stats.Entities.Diff) >= w.threshold || abs(stats.Readings.Diff) >= w.threshold {
		if err := w.alerter.DriftAlert(ctx, stats); err != nil {
			w.logger.Warn("drift alert delivery failed", zap.Error(err))
		}
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
