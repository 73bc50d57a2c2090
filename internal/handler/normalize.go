package handler

import (
	"encoding/json"
	"strings"
)

// shellyMarker identifies topics from Shelly devices, which split a reading
// across the topic tail and a bare scalar payload:
//
//	topic:   shellies/room/sensor/temperature
//	payload: 20.00
const shellyMarker = "shellies"

// normalizeTopic rewrites device-family quirks into the canonical
// (topic, JSON payload) shape. Shelly topics collapse to their first two
// segments and the payload becomes {lastSegment: rawText}. Topics with fewer
// than two segments pass through untouched, as do all other families.
func normalizeTopic(topic string, payload []byte) (string, []byte) {
	if !strings.Contains(topic, shellyMarker) {
		return topic, payload
	}

	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return topic, payload
	}

	sensor := parts[len(parts)-1]
	wrapped, err := json.Marshal(map[string]string{sensor: string(payload)})
	if err != nil {
		return topic, payload
	}
	return parts[0] + "/" + parts[1], wrapped
}

// lastTopicSegment returns the topic tail, used as the field name when a
// payload decodes to a bare scalar.
func lastTopicSegment(topic string) string {
	parts := strings.Split(topic, "/")
	return parts[len(parts)-1]
}
