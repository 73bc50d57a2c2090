package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumbers(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
	}{
		{"json float", 20.5, 20.5},
		{"negative float", -3.25, -3.25},
		{"zero", 0.0, 0},
		{"int", 42, 42},
		{"int64", int64(7), 7},
		{"float32", float32(1.5), 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoerceStateWords(t *testing.T) {
	cases := map[string]float64{
		"ON": 1, "on": 1, "On": 1,
		"OFF": 0, "off": 0, "oFf": 0,
		"TRUE": 1, "true": 1,
		"FALSE": 0, "false": 0,
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			got, err := Coerce(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCoerceBooleans(t *testing.T) {
	got, err := Coerce(true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = Coerce(false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestCoerceNumericStrings(t *testing.T) {
	got, err := Coerce("20.5")
	require.NoError(t, err)
	assert.Equal(t, 20.5, got)

	got, err = Coerce([]byte("-12"))
	require.NoError(t, err)
	assert.Equal(t, -12.0, got)
}

func TestCoerceFailures(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"free text", "notanumber"},
		{"object", map[string]any{}},
		{"array", []any{1.0, 2.0}},
		{"null", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Coerce(tc.value)
			require.Error(t, err)

			var notNumeric *NotNumericError
			require.True(t, errors.As(err, &notNumeric))
			assert.Equal(t, tc.value, notNumeric.Value)
		})
	}
}
