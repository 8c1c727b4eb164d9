package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/audit"
)

// driftAlertPayload is the JSON body posted to the operations webhook.
type driftAlertPayload struct {
	Service    string            `json:"service"`
	Entities   audit.StoreCounts `json:"entities"`
	Readings   audit.StoreCounts `json:"readings"`
	ObservedAt time.Time         `json:"observed_at"`
}

// WebhookAlerter delivers drift alerts to an HTTP endpoint.
type WebhookAlerter struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

func NewWebhookAlerter(url string, logger *zap.Logger) *WebhookAlerter {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookAlerter{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

var _ audit.Alerter = (*WebhookAlerter)(nil)

// DriftAlert posts the current drift stats. Any non-2xx response is an error
// so the watcher can log the failed delivery.
func (a *WebhookAlerter) DriftAlert(ctx context.Context, stats audit.DriftStats) error {
	payload := driftAlertPayload{
		Service:    "infrasight-sync",
		Entities:   stats.Entities,
		Readings:   stats.Readings,
		ObservedAt: time.Now().UTC(),
	}

	resp, err := a.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(a.url)
	if err != nil {
		return fmt.Errorf("failed to post drift alert: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("drift alert rejected: status %d", resp.StatusCode())
	}

	a.logger.Info("drift alert delivered",
		zap.Int64("entity_diff", stats.Entities.Diff),
		zap.Int64("reading_diff", stats.Readings.Diff),
	)
	return nil
}
