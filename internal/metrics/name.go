package metrics

import (
	"regexp"
	"strings"
)

var parenthesized = regexp.MustCompile(`\((.*?)\)`)

// ResolveName derives the registry-safe metric identifier for a field path.
//
// The accumulated path prefix already carries the joined parent keys with a
// trailing "_" (see the extractor). Sanitization removes literal dots,
// rewrites spaces to underscores, and strips parenthesized substrings, so
// identical field paths always resolve to the same identifier.
func ResolveName(metricPrefix, pathPrefix, field string) string {
	name := metricPrefix + pathPrefix + field
	name = strings.ReplaceAll(name, ".", "")
	name = strings.ReplaceAll(name, " ", "_")
	return parenthesized.ReplaceAllString(name, "")
}
