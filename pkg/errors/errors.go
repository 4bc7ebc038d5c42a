// Package errors provides custom error types for the tablematch system.
// Configuration errors are raised before any matching begins; data-quality
// conditions are never errors and surface as report dispositions instead.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Common sentinel errors for the tablematch system.
var (
	// ErrMissingRequiredColumn indicates a required canonical field could not
	// be resolved to a source column
	ErrMissingRequiredColumn = errors.New("missing required column")

	// ErrAmbiguousMapping indicates a source column is bound more than once
	// within a single table
	ErrAmbiguousMapping = errors.New("ambiguous column mapping")

	// ErrInvalidKeyField indicates a key, fallback, or signature field that
	// is not part of the canonical schema
	ErrInvalidKeyField = errors.New("invalid key field reference")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariantViolated indicates the result set does not partition the
	// candidate table exactly
	ErrInvariantViolated = errors.New("result partition invariant violated")
)

// MissingColumnError reports a declared canonical field that has no usable
// source column in one table. It covers required fields missing a binding
// and any bound field (required or optional) whose column is absent from
// the input headers.
type MissingColumnError struct {
	Table  string // table role the mapping was applied to
	Field  string // canonical field name
	Column string // declared source column, empty when none was declared
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("table %s: declared field %q maps to column %q which is not present in the input headers", e.Table, e.Field, e.Column)
	}
	return fmt.Sprintf("table %s: field %q must be bound to a source column", e.Table, e.Field)
}

// Is implements errors.Is support.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingRequiredColumn
}

// AmbiguousMappingError reports a source column bound to more than one
// canonical field within a single table.
type AmbiguousMappingError struct {
	Table  string
	Column string
	Fields []string // canonical fields competing for the column
}

// Error implements the error interface.
func (e *AmbiguousMappingError) Error() string {
	return fmt.Sprintf("table %s: source column %q is mapped to multiple canonical fields %v", e.Table, e.Column, e.Fields)
}

// Is implements errors.Is support.
func (e *AmbiguousMappingError) Is(target error) bool {
	return target == ErrAmbiguousMapping
}

// KeyFieldError reports a key, fallback-key, or signature declaration that
// references a field outside the canonical schema.
type KeyFieldError struct {
	Field string
	Role  string // "key", "fallback_key", or "signature"
}

// Error implements the error interface.
func (e *KeyFieldError) Error() string {
	return fmt.Sprintf("%s field %q is not declared in the canonical schema", e.Role, e.Field)
}

// Is implements errors.Is support.
func (e *KeyFieldError) Is(target error) bool {
	return target == ErrInvalidKeyField
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PartitionError carries a failure isolated to a single candidate-table
// partition. It annotates the report rather than aborting the run.
type PartitionError struct {
	Partition int
	Start     int // first candidate row index in the partition
	End       int // one past the last candidate row index
	Err       error
}

// Error implements the error interface.
func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d (rows %d-%d): %v", e.Partition, e.Start, e.End, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *PartitionError) Unwrap() error {
	return e.Err
}

// LoadError represents a failure reading an input table file.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExportError represents a failure writing a report artifact.
type ExportError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ExportError) Unwrap() error {
	return e.Err
}
