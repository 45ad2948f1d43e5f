// Package events publishes the engine's analytics and notification streams.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/viralforge/view-reward-engine/internal/ports"
)

// Topics maps each engine event stream to its Kafka topic.
type Topics struct {
	ViewCounted   string
	MilestonePaid string
	CreatorNotify string
}

// KafkaPublisher writes engine events with full-ISR acks. View events
// partition by video id and notifications by recipient, so per-key ordering
// holds within each stream.
type KafkaPublisher struct {
	writer *kafka.Writer
	topics Topics
}

func NewKafkaPublisher(brokers []string, topics Topics) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
		topics: topics,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	topic, err := p.topicFor(eventType)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// topicFor rejects event types the engine does not emit; a typo in a caller
// must not create a stray topic.
func (p *KafkaPublisher) topicFor(eventType string) (string, error) {
	var topic string
	switch eventType {
	case ports.EventViewCounted:
		topic = p.topics.ViewCounted
	case ports.EventMilestonePaid:
		topic = p.topics.MilestonePaid
	case ports.EventCreatorNotify:
		topic = p.topics.CreatorNotify
	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
	if topic == "" {
		return "", fmt.Errorf("no topic configured for event type %q", eventType)
	}
	return topic, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
