package coerce

import "strings"

// splitComposite tokenizes the composite-string grammar used for
// multi-valued configuration values: double-quoted parts separated by
// commas, with backslash escaping inside quotes, e.g. `"a","b","c\"d"`.
//
// Content outside of quotes (other than separators and whitespace), an
// unterminated quote, and a dangling separator are malformed and yield a
// FormatError.
func splitComposite(value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	const (
		wantQuote = iota
		inQuote
		wantComma
	)

	var (
		parts   []string
		builder strings.Builder
		state   = wantQuote
		escaped = false
	)
	for _, r := range value {
		switch state {
		case wantQuote:
			switch {
			case r == '"':
				state = inQuote
			case r == ' ' || r == '\t':
				// permissive about padding between parts
			default:
				return nil, &FormatError{Value: value, Kind: String}
			}
		case inQuote:
			switch {
			case escaped:
				builder.WriteRune(r)
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				parts = append(parts, builder.String())
				builder.Reset()
				state = wantComma
			default:
				builder.WriteRune(r)
			}
		case wantComma:
			switch {
			case r == ',':
				state = wantQuote
			case r == ' ' || r == '\t':
			default:
				return nil, &FormatError{Value: value, Kind: String}
			}
		}
	}
	if state != wantComma {
		return nil, &FormatError{Value: value, Kind: String}
	}
	return parts, nil
}
