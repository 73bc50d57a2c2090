// Package metrics owns the dynamically growing set of Prometheus gauges
// derived from MQTT payload fields, plus the received-message counter.
package metrics

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	gaugeHelp   = "metric generated from MQTT message."
	counterHelp = "Counter of received messages"
)

// Registry maps metric identifiers to live gauges, labeled by topic.
// Entries are created lazily on first observation and never removed.
type Registry struct {
	prom       *prometheus.Registry
	topicLabel string

	messages *prometheus.CounterVec

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec

	logger *slog.Logger
}

// NewRegistry builds an empty registry. The message counter is registered
// eagerly under <prefix>message_total so it is exposed before any message
// arrives.
func NewRegistry(metricPrefix, topicLabel string, logger *slog.Logger) *Registry {
	r := &Registry{
		prom:       prometheus.NewRegistry(),
		topicLabel: topicLabel,
		gauges:     make(map[string]*prometheus.GaugeVec),
		logger:     logger,
	}
	r.messages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "message_total",
		Help: counterHelp,
	}, []string{topicLabel})
	r.prom.MustRegister(r.messages)
	return r
}

// Gatherer exposes the underlying Prometheus registry for the scrape endpoint.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.prom
}

// SetGauge records the latest value for the named metric under the given
// topic, creating the gauge on first observation. Creation and update are one
// critical section so concurrent delivery cannot race a duplicate gauge.
// A name the Prometheus registry rejects is logged and skipped; it must never
// take the message down.
func (r *Registry) SetGauge(name, topic string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge, ok := r.gauges[name]
	if !ok {
		gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: gaugeHelp,
		}, []string{r.topicLabel})
		if err := r.prom.Register(gauge); err != nil {
			r.logger.Debug("rejected metric name", "name", name, "error", err)
			return
		}
		r.gauges[name] = gauge
		r.logger.Info("creating prometheus metric", "name", name)
	}

	gauge.With(prometheus.Labels{r.topicLabel: topic}).Set(value)
	r.logger.Debug("new metric value", "name", name, "topic", topic, "value", value)
}

// Has reports whether a gauge has been created under the given identifier.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.gauges[name]
	return ok
}

// CountMessage increments the received-message counter for a topic.
func (r *Registry) CountMessage(topic string) {
	r.messages.With(prometheus.Labels{r.topicLabel: topic}).Inc()
}
