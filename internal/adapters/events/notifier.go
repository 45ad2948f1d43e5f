package events

import (
	"context"
	"log/slog"

	"github.com/viralforge/view-reward-engine/internal/ports"
)

// KafkaNotifier delivers creator notifications through the analytics
// publisher, keyed by recipient so one creator's notifications stay ordered.
type KafkaNotifier struct {
	publisher ports.AnalyticsPublisher
	eventType string
}

func NewKafkaNotifier(publisher ports.AnalyticsPublisher, eventType string) *KafkaNotifier {
	if eventType == "" {
		eventType = ports.EventCreatorNotify
	}
	return &KafkaNotifier{publisher: publisher, eventType: eventType}
}

func (n *KafkaNotifier) Send(ctx context.Context, userID string, payload []byte) error {
	return n.publisher.Publish(ctx, n.eventType, payload, userID)
}

// LoggingPublisher stands in when no brokers are configured, so local runs
// still show the event stream.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	p.logger.InfoContext(ctx, "event published (log only)",
		"event_type", eventType, "partition_key", partitionKey, "payload", string(payload))
	return nil
}
