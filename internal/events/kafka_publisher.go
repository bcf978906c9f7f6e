package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/akylbek/payment-system/paydock-notification/internal/config"
	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes notification outcomes keyed by payment id, so
// outcomes of one payment stay on one partition.
type KafkaPublisher struct {
	writer messageWriter
}

var _ interfaces.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	})
}

func NewKafkaPublisherWithWriter(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOutcome(ctx context.Context, outcome *models.NotificationOutcome) error {
	value, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode notification outcome: %w", err)
	}

	key := outcome.PaymentID
	if key == "" {
		key = outcome.Reference
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(outcome.Event)},
			{Key: "status", Value: []byte(outcome.Status)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops outcomes. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOutcome(context.Context, *models.NotificationOutcome) error {
	return nil
}
