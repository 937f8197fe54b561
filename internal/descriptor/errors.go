package descriptor

import (
	"errors"
	"fmt"
)

// Parse failure categories. Every parse error carries the document position
// of the offending token and wraps one of these sentinels.
var (
	ErrUnknownElement   = errors.New("unknown element")
	ErrTransition       = errors.New("element not allowed here")
	ErrMissingAttribute = errors.New("required attribute missing")
	ErrInvalidValue     = errors.New("invalid value")
)

// ParseError is a fatal configuration error with source position. A
// descriptor whose parse failed is unusable; no partial result is exposed.
type ParseError struct {
	Line   int
	Column int
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("descriptor: line %d, column %d: %s: %s", e.Line, e.Column, e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func positioned(line, column int, err error, format string, args ...any) *ParseError {
	return &ParseError{
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
