// Package handler turns inbound MQTT messages into gauge updates. It owns
// the per-message pipeline: topic normalization, JSON decoding, recursive
// field extraction, and the received-message counter.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/iotlab/mqtt-exporter/internal/metrics"
	"github.com/iotlab/mqtt-exporter/internal/parse"
)

// DeadLetterer mirrors undecodable payloads to an external queue. Nil means
// the mirror is disabled; failures are logged and never affect ingestion.
type DeadLetterer interface {
	Publish(ctx context.Context, topic string, payload []byte, reason error) error
}

// Pipeline processes one message at a time against the metric registry.
type Pipeline struct {
	registry      *metrics.Registry
	metricPrefix  string
	ignoredTopics map[string]struct{}
	deadLetter    DeadLetterer
	logger        *slog.Logger
}

func NewPipeline(registry *metrics.Registry, metricPrefix string, ignoredTopics map[string]struct{}, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		registry:      registry,
		metricPrefix:  metricPrefix,
		ignoredTopics: ignoredTopics,
		logger:        logger,
	}
}

// WithDeadLetter attaches the optional dead-letter mirror.
func (p *Pipeline) WithDeadLetter(dl DeadLetterer) *Pipeline {
	p.deadLetter = dl
	return p
}

// Ingest runs the full pipeline for one inbound message. Every failure is
// local: at worst the message (or a single field) is dropped, never the
// process.
func (p *Pipeline) Ingest(ctx context.Context, topic string, payload []byte) {
	if _, ignored := p.ignoredTopics[topic]; ignored {
		p.logger.Debug("ignored topic", "topic", topic)
		return
	}

	topic, payload = normalizeTopic(topic, payload)

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		p.logger.Debug("failed to parse payload as JSON", "topic", topic, "error", err)
		p.mirror(ctx, topic, payload, err)
		return
	}

	fields, ok := decoded.(map[string]any)
	if !ok {
		// Scalar payload: the topic tail names the field.
		fields = map[string]any{lastTopicSegment(topic): decoded}
	}

	p.extract(fields, topic, "")
	p.registry.CountMessage(topic)
}

// extract walks the decoded payload, descending into nested objects with an
// accumulating name prefix and setting one gauge per numeric leaf. A field
// that fails coercion is skipped without affecting its siblings.
func (p *Pipeline) extract(fields map[string]any, topic, pathPrefix string) {
	for field, value := range fields {
		if nested, ok := value.(map[string]any); ok {
			p.logger.Debug("parsing nested object", "field", field)
			p.extract(nested, topic, pathPrefix+field+"_")
			continue
		}

		number, err := parse.Coerce(value)
		if err != nil {
			var notNumeric *parse.NotNumericError
			if errors.As(err, &notNumeric) {
				p.logger.Debug("failed to convert field", "field", field, "value", notNumeric.Value)
			}
			continue
		}

		name := metrics.ResolveName(p.metricPrefix, pathPrefix, field)
		p.registry.SetGauge(name, topic, number)
	}
}

func (p *Pipeline) mirror(ctx context.Context, topic string, payload []byte, reason error) {
	if p.deadLetter == nil {
		return
	}
	if err := p.deadLetter.Publish(ctx, topic, payload, reason); err != nil {
		p.logger.Warn("dead-letter publish failed", "topic", topic, "error", err)
	}
}
