package metrics

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry("mqtt_", "topic", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSetGaugeCreatesLazily(t *testing.T) {
	r := newTestRegistry(t)

	assert.False(t, r.Has("mqtt_temperature"))
	r.SetGauge("mqtt_temperature", "zigbee2mqtt/livingroom", 21.5)
	assert.True(t, r.Has("mqtt_temperature"))

	gauge := r.gauges["mqtt_temperature"]
	assert.Equal(t, 21.5, testutil.ToFloat64(gauge.WithLabelValues("zigbee2mqtt/livingroom")))
}

func TestSetGaugeReplacesValue(t *testing.T) {
	r := newTestRegistry(t)

	r.SetGauge("mqtt_humidity", "zigbee2mqtt/bathroom", 40)
	r.SetGauge("mqtt_humidity", "zigbee2mqtt/bathroom", 55)

	assert.Len(t, r.gauges, 1)
	gauge := r.gauges["mqtt_humidity"]
	assert.Equal(t, 55.0, testutil.ToFloat64(gauge.WithLabelValues("zigbee2mqtt/bathroom")))
}

func TestSetGaugeSeparateTopics(t *testing.T) {
	r := newTestRegistry(t)

	r.SetGauge("mqtt_state", "shellies/kitchen", 1)
	r.SetGauge("mqtt_state", "shellies/hall", 0)

	gauge := r.gauges["mqtt_state"]
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge.WithLabelValues("shellies/kitchen")))
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge.WithLabelValues("shellies/hall")))
}

func TestSetGaugeInvalidNameSkipped(t *testing.T) {
	r := newTestRegistry(t)

	// Prometheus rejects names with characters outside [a-zA-Z0-9_:].
	r.SetGauge("mqtt_bad-name!", "some/topic", 1)
	assert.False(t, r.Has("mqtt_bad-name!"))
}

func TestCountMessage(t *testing.T) {
	r := newTestRegistry(t)

	r.CountMessage("zigbee2mqtt/livingroom")
	r.CountMessage("zigbee2mqtt/livingroom")
	r.CountMessage("other/topic")

	counter := r.messages
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("zigbee2mqtt/livingroom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("other/topic")))
}

func TestGathererExposesCounterName(t *testing.T) {
	r := newTestRegistry(t)
	r.CountMessage("zigbee2mqtt/livingroom")

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "mqtt_message_total")
}
