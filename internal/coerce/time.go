package coerce

import "time"

// Timestamp inputs arrive in whatever shape the source system produced.
// Three fixed-width legacy renderings are recognized by length before the
// generic formats are attempted.
const (
	// 28 characters, the classic locale-independent full rendering
	layoutLegacy = "Mon Jan 02 15:04:05 MST 2006"
	// 10 characters, date only
	layoutDateOnly = "2006-01-02"
	// 21 characters, the internal interchange rendering with a literal
	// zulu marker
	layoutInternal = "2006-01-02 15:04:05 Z"
)

var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"20060102150405Z",
}

// parseTime probes the known fixed-width formats by input length and falls
// back to the generic formats. It reports false when no format matches;
// callers treat that as an absent timestamp.
func parseTime(value string) (time.Time, bool) {
	var probe []string
	switch len(value) {
	case len(layoutLegacy):
		probe = []string{layoutLegacy}
	case len(layoutDateOnly):
		probe = []string{layoutDateOnly}
	case len(layoutInternal):
		probe = []string{layoutInternal}
	}
	for _, layout := range probe {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
