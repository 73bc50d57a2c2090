// Package config loads exporter settings from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/iotlab/mqtt-exporter/internal/logging"
)

type Config struct {
	MQTTBrokerURL    string
	MQTTClientID     string
	MQTTUsername     string
	MQTTPassword     string
	MQTTTopic        string
	MQTTQoS          byte
	MQTTKeepAliveSec int

	// IgnoredTopics drops messages by exact topic match, before any
	// normalization or decoding.
	IgnoredTopics map[string]struct{}

	MetricPrefix   string
	TopicLabel     string
	PrometheusPort int

	// KafkaBrokers enables the dead-letter mirror when non-empty.
	KafkaBrokers  []string
	KafkaDLQTopic string

	Logger *slog.Logger
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvQoS(key string, fallback byte) byte {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if n, err := strconv.Atoi(val); err == nil {
		if n < 0 {
			n = 0
		}
		if n > 2 {
			n = 2
		}
		return byte(n)
	}
	return fallback
}

// parseIgnoredTopics splits a comma-separated list into an exact-match set,
// skipping empty entries.
func parseIgnoredTopics(list string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Split(list, ",") {
		if s := strings.TrimSpace(t); s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func parseBrokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if s := strings.TrimSpace(b); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		MQTTBrokerURL:    getenv("MQTT_BROKER_URL", "tcp://127.0.0.1:1883"),
		MQTTClientID:     getenv("MQTT_CLIENT_ID", "mqtt-exporter"),
		MQTTUsername:     os.Getenv("MQTT_USERNAME"),
		MQTTPassword:     os.Getenv("MQTT_PASSWORD"),
		MQTTTopic:        getenv("MQTT_TOPIC", "#"),
		MQTTQoS:          getenvQoS("MQTT_QOS", 0),
		MQTTKeepAliveSec: getenvInt("MQTT_KEEPALIVE", 60),

		IgnoredTopics: parseIgnoredTopics(os.Getenv("MQTT_IGNORED_TOPICS")),

		MetricPrefix:   getenv("PROMETHEUS_PREFIX", "mqtt_"),
		TopicLabel:     getenv("TOPIC_LABEL", "topic"),
		PrometheusPort: getenvInt("PROMETHEUS_PORT", 9004),

		KafkaBrokers:  parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaDLQTopic: getenv("KAFKA_DLQ_TOPIC", "mqtt-exporter-dlq"),

		Logger: logging.NewLogger(getenv("LOG_LEVEL", "info")),
	}

	if cfg.MQTTBrokerURL == "" {
		return nil, errors.New("MQTT_BROKER_URL must not be empty")
	}
	if cfg.PrometheusPort <= 0 || cfg.PrometheusPort > 65535 {
		return nil, errors.New("PROMETHEUS_PORT must be a valid port number")
	}

	return cfg, nil
}

// DeadLetterEnabled reports whether the Kafka dead-letter mirror is configured.
func (c *Config) DeadLetterEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
