package ics

import (
	"errors"
	"fmt"
	"strings"
)

// Recoverable per-line conditions reported by the block tree builder.
var (
	ErrMalformedPropertyLine    = errors.New("malformed property line")
	ErrUnexpectedEnd            = errors.New("unexpected END")
	ErrMismatchedEnd            = errors.New("mismatched END")
	ErrPropertyOutsideComponent = errors.New("property outside component")
)

// Fatal for the whole document.
var ErrUnclosedComponent = errors.New("unclosed component")

// Per-component failures.
var (
	ErrMapping    = errors.New("mapping failed")
	ErrValidation = errors.New("validation failed")
)

// LineError describes a logical line that was skipped while building the
// block tree. Line is 1-based and counts unfolded lines.
type LineError struct {
	Kind   error
	Line   int
	Text   string
	Detail string
}

func (e *LineError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("line %d: %v (%s): %q", e.Line, e.Kind, e.Detail, e.Text)
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Kind, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Kind
}

// UnclosedError lists the component types still open at end of input,
// outermost first.
type UnclosedError struct {
	Types []string
}

func (e *UnclosedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnclosedComponent, strings.Join(e.Types, ", "))
}

func (e *UnclosedError) Unwrap() error {
	return ErrUnclosedComponent
}

// MappingError is returned by a component mapper when a property value
// cannot be converted, e.g. a non-numeric PRIORITY.
type MappingError struct {
	Component string
	Property  string
	Value     string
	Err       error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Component, e.Property, e.Value, e.Err)
}

func (e *MappingError) Unwrap() []error {
	return []error{ErrMapping, e.Err}
}

// ValidationError collects every schema problem found on one record.
type ValidationError struct {
	Component string
	Problems  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v: %s", e.Component, ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
