// Package errors defines the pipeline error taxonomy shared by the
// enrichment and modeling stages.
//
// Row-level key failures (MALFORMED_KEY) are recoverable: the offending row
// is excluded from keyed joins but kept in the enriched output. Schema and
// data-sufficiency failures (SCHEMA_MISMATCH, INSUFFICIENT_DATA) abort the
// run and carry enough context to diagnose without re-running verbosely.
// Join misses are not errors at all; they propagate as explicit nulls.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies a pipeline error
type ErrorType string

const (
	ErrTypeMalformedKey     ErrorType = "MALFORMED_KEY"
	ErrTypeSchemaMismatch   ErrorType = "SCHEMA_MISMATCH"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// PipelineError represents a pipeline-specific error
type PipelineError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with PipelineError
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new pipeline error
func New(errType ErrorType, message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err (or anything it wraps) is a PipelineError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Type == errType
	}
	return false
}

// Helper constructors for the pipeline error types

// NewMalformedKeyError creates a malformed postal-code key error. The reason
// says what made the key unusable; the raw value is recorded so the caller
// can log which row was excluded.
func NewMalformedKeyError(raw, reason string) *PipelineError {
	return New(ErrTypeMalformedKey, reason, nil).
		WithContext("raw_value", raw)
}

// NewSchemaMismatchError creates a schema mismatch error naming the
// offending feature.
func NewSchemaMismatchError(feature string) *PipelineError {
	return New(ErrTypeSchemaMismatch, fmt.Sprintf("record is missing required feature %q and no default is defined", feature), nil).
		WithContext("feature", feature)
}

// NewInsufficientDataError creates an insufficient data error reporting the
// row and feature counts that made the fit impossible.
func NewInsufficientDataError(rows, features int) *PipelineError {
	return New(ErrTypeInsufficientData, fmt.Sprintf("cannot fit model: %d training rows for %d features", rows, features), nil).
		WithContext("rows", rows).
		WithContext("features", features)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *PipelineError {
	return New(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *PipelineError {
	return New(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *PipelineError {
	return New(ErrTypeConfig, message, cause)
}
