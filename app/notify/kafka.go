package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

var _ Notifier = (*Kafka)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes one record per message, keyed by entry URL.
type Kafka struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

func NewKafka(brokers []string, topic string, timeout time.Duration) *Kafka {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: timeout,
	}

	return &Kafka{
		writer:  writer,
		topic:   topic,
		timeout: timeout,
	}
}

func (k *Kafka) Notify(ctx context.Context, msg Message) error {
	record, err := encodeRecord(msg)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(timeoutCtx, record); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", k.topic, err)
	}

	slog.Debug("Kafka message published", "topic", k.topic, "title", msg.Title)
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

func encodeRecord(msg Message) (kafka.Message, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode message: %w", err)
	}

	return kafka.Message{
		Key:   []byte(msg.URL),
		Value: value,
	}, nil
}
