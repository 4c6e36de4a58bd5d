package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"docverify/internal/platform/kafka"
)

// Producer is the subset of the Kafka producer used by the store.
type Producer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// KafkaStore publishes events as JSON records keyed by verification id.
type KafkaStore struct {
	producer Producer
	topic    string
}

func NewKafkaStore(producer Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: producer, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := &kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.VerificationID),
		Value: value,
		Headers: map[string]string{
			"event": string(event.Name),
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
