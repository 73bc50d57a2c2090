// Package broker publishes undecodable MQTT payloads to a Kafka dead-letter
// topic so they can be inspected out of band. The exporter works without it;
// the mirror is wired only when brokers are configured.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type DeadLetterWriter struct {
	writer *kafka.Writer
}

// deadLetterEnvelope wraps the raw payload with enough context to replay it.
// The original bytes are carried as a string because they are, by definition,
// not valid JSON.
type deadLetterEnvelope struct {
	Error      string `json:"error"`
	Original   string `json:"original"`
	Topic      string `json:"topic"`
	ReceivedAt string `json:"receivedAt"`
	EventID    string `json:"eventId"`
}

func NewDeadLetterWriter(brokers []string, topic string) *DeadLetterWriter {
	return &DeadLetterWriter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},

			BatchSize:    200,
			BatchBytes:   512 << 10,
			BatchTimeout: 10 * time.Millisecond,

			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
		},
	}
}

// Publish writes one dead-letter record keyed by the MQTT topic.
func (w *DeadLetterWriter) Publish(ctx context.Context, topic string, payload []byte, reason error) error {
	envelope := deadLetterEnvelope{
		Error:      reason.Error(),
		Original:   string(payload),
		Topic:      topic,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339Nano),
		EventID:    uuid.New().String(),
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(topic),
		Value: value,
	})
}

func (w *DeadLetterWriter) Close() error {
	return w.writer.Close()
}
