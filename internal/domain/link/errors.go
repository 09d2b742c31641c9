package link

import (
	"errors"
	"fmt"
	"strings"
)

// ParseErrorKind classifies why a link could not be parsed
type ParseErrorKind string

const (
	ErrKindUnsupportedScheme ParseErrorKind = "unsupported_scheme"
	ErrKindMalformedPayload  ParseErrorKind = "malformed_payload"
	ErrKindMalformedQuery    ParseErrorKind = "malformed_query"
	ErrKindMissingField      ParseErrorKind = "missing_field"
	ErrKindInvalidField      ParseErrorKind = "invalid_field"
)

// snippetLimit bounds how much of a link is echoed back in errors and logs.
const snippetLimit = 50

// ParseError reports a per-link failure.
// The batch that produced it continues with the next link.
type ParseError struct {
	Kind    ParseErrorKind
	Scheme  Scheme
	Message string
	Snippet string
	Cause   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(kind ParseErrorKind, scheme Scheme, raw, message string, cause error) error {
	return &ParseError{
		Kind:    kind,
		Scheme:  scheme,
		Message: message,
		Snippet: Snippet(raw),
		Cause:   cause,
	}
}

// Snippet returns a single-line prefix of s safe for logs.
func Snippet(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	if len(s) <= snippetLimit {
		return s
	}
	cut := 0
	for i := range s {
		if i > snippetLimit {
			break
		}
		cut = i
	}
	return s[:cut] + "..."
}
