package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes JSON-encoded events to one topic
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher for topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaPublisher{
		writer: w,
		logger: logger.With().Str("component", "kafka-publisher").Str("topic", topic).Logger(),
	}
}

// Publish serialises the event and writes it synchronously
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Str("key", event.Key).Msg("Failed to publish event")
		return fmt.Errorf("publishing to kafka: %w", err)
	}

	p.logger.Debug().Str("type", event.Type).Str("key", event.Key).Int("size", len(value)).Msg("Event published")
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
