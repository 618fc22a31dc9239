package parser

import (
	"errors"
	"fmt"
)

// ParseError reports malformed query structure: a missing let/in pairing,
// unbalanced delimiters, or an unterminated string. Parse errors are fatal
// for the affected query; a bundle without its final output binding would
// be incorrect, so they are never silently skipped.
type ParseError struct {
	Query   string // query display name
	Message string
	Err     error // underlying cause (optional)
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("parse %q: %s", e.Query, e.Message)
	}
	return fmt.Sprintf("parse: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
