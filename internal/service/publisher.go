package service

import (
	"context"
	"fmt"
	"time"

	"jsmc-rsvp/internal/model"

	"github.com/segmentio/kafka-go"
)

// The relay writes one message per call, so waiting to fill a batch only
// adds latency.
const relayBatchTimeout = 10 * time.Millisecond

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:      brokers,
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: relayBatchTimeout,
		}),
	}
}

// Publish keys messages by confirmation code so one RSVP's events stay on
// one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, msg model.OutboxMessage) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: []byte(msg.Payload),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
			{Key: "outbox_id", Value: []byte(fmt.Sprint(msg.ID))},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
