// Package kafka publishes audit events to a Kafka topic. Deployments that
// feed resolution verdicts into downstream compliance tooling use this sink
// instead of, or alongside, the database store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "veridoc/pkg/platform/audit"
)

// Store publishes audit events to Kafka. It satisfies audit.Store so the
// publisher can treat the broker like any other sink.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and prepares the producer.
func New(brokers []string, topic string) (*Store, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Store{client: client, topic: topic}, nil
}

// Append produces one event, keyed by session ID so a session's events stay
// ordered within a partition.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.SessionID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (s *Store) Close() {
	s.client.Close()
}
