package coerce

import "fmt"

// FormatError reports a source value that cannot be represented in the
// requested kind.
type FormatError struct {
	Value string
	Kind  Kind
	cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("coerce: malformed %s value %q", e.Kind, e.Value)
}

func (e *FormatError) Unwrap() error {
	return e.cause
}

// UnsupportedTypeError reports a coercion target this subsystem does not
// implement.
type UnsupportedTypeError struct {
	Kind Kind
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("coerce: unsupported target type %s", e.Kind)
}
