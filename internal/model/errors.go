package model

import "fmt"

// ErrorKind categorizes fatal parse failures
type ErrorKind string

const (
	ErrMalformedXML    ErrorKind = "malformed_xml"
	ErrUnsupportedRoot ErrorKind = "unsupported_root"
	ErrMissingField    ErrorKind = "missing_field"
)

// ParseError represents a fatal parse failure with field context
type ParseError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Kind, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(kind ErrorKind, field, message string, cause error) *ParseError {
	return &ParseError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// NewMissingFieldError reports a mandatory field absent after full
// extraction. The message is phrased for direct display to the uploader.
func NewMissingFieldError(field, message string) *ParseError {
	return &ParseError{
		Kind:    ErrMissingField,
		Field:   field,
		Message: message,
	}
}

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}
