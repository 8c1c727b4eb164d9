package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/config"
	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/ingest"
	"github.com/Amadou-dot/infrasight-sub002/internal/mqtt"
)

// MQTTConsumer feeds batches published by edge gateways into the same
// ingestion pipeline the HTTP endpoint uses.
type MQTTConsumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	pipeline   *ingest.Pipeline
	logger     *zap.Logger
}

func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	pipeline *ingest.Pipeline,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		pipeline:   pipeline,
		logger:     logger,
	}
}

// Start subscribes and blocks until ctx is cancelled.
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.MQTT.Topic
	if topic == "" {
		return fmt.Errorf("MQTT topic not configured")
	}

	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to readings topic: %w", err)
	}

	c.logger.Info("MQTT consumer started", zap.String("topic", topic))

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the readings topic.
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	topic := c.config.MQTT.Topic
	if topic != "" {
		if err := c.mqttClient.Unsubscribe(topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}
	c.logger.Info("MQTT consumer stopped")
	return nil
}

func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	var req domain.IngestRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to decode readings batch: %w", err)
	}
	if req.BatchSource == "" {
		req.BatchSource = "mqtt"
	}

	report, err := c.pipeline.Ingest(context.Background(), &req)
	if err != nil {
		return fmt.Errorf("failed to ingest readings batch: %w", err)
	}

	c.logger.Info("MQTT batch ingested",
		zap.String("topic", topic),
		zap.Int("inserted", report.Inserted),
		zap.Int("rejected", report.Rejected),
	)
	return nil
}
