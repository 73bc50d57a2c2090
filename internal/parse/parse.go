// Package parse extracts numeric values out of untrusted MQTT payload leaves.
package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// stateValues maps switch/relay state words to exposable numbers.
var stateValues = map[string]float64{
	"ON":    1,
	"OFF":   0,
	"TRUE":  1,
	"FALSE": 0,
}

// NotNumericError reports a leaf value that cannot be turned into a number.
// It carries the offending value for diagnostic logging.
type NotNumericError struct {
	Value any
}

func (e *NotNumericError) Error() string {
	return fmt.Sprintf("cannot parse %q to a number", fmt.Sprint(e.Value))
}

// Coerce converts one untrusted leaf value into a float64.
//
// Numbers pass through unchanged and booleans map to 1/0. Strings are
// upper-cased and checked against the state-word table (ON/OFF/TRUE/FALSE)
// before a last-ditch float parse. Everything else (objects, arrays, null)
// fails with *NotNumericError.
func Coerce(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return coerceString(string(v))
	case string:
		return coerceString(v)
	default:
		return 0, &NotNumericError{Value: value}
	}
}

func coerceString(s string) (float64, error) {
	upper := strings.ToUpper(s)
	if mapped, ok := stateValues[upper]; ok {
		return mapped, nil
	}
	n, err := strconv.ParseFloat(upper, 64)
	if err != nil {
		return 0, &NotNumericError{Value: s}
	}
	return n, nil
}
