// Package errors provides a lightweight structured error type (DocBuilderError)
// for category-based classification across the report pipeline and CLI.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a DocBuilder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig  ErrorCategory = "config"
	CategoryContent ErrorCategory = "content"
	CategoryData    ErrorCategory = "data"

	// Generation and rendering errors
	CategoryImage  ErrorCategory = "image"
	CategoryRender ErrorCategory = "render"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Fails the report
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// DocBuilderError is a structured error with category, severity, and context
type DocBuilderError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for DocBuilderError
type ContextFields map[string]any

// contextKeyOrder fixes the rendering order of well-known context fields so
// error strings are stable across runs.
var contextKeyOrder = []string{
	"study", "field", "section", "path", "column", "row", "type", "key", "placeholder", "reason",
}

// Error implements the error interface
func (e *DocBuilderError) Error() string {
	msg := e.Message
	for _, k := range contextKeyOrder {
		if v, ok := e.Context[k]; ok {
			msg = fmt.Sprintf("%s [%s=%v]", msg, k, v)
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, msg, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, msg)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DocBuilderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DocBuilderError) WithContext(key string, value any) *DocBuilderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DocBuilderError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DocBuilderError {
	return &DocBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new DocBuilderError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocBuilderError {
	return &DocBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category, unwrapping
// fmt.Errorf chains along the way
func IsCategory(err error, category ErrorCategory) bool {
	var dbe *DocBuilderError
	if errors.As(err, &dbe) {
		return dbe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a DocBuilderError
func GetCategory(err error) ErrorCategory {
	var dbe *DocBuilderError
	if errors.As(err, &dbe) {
		return dbe.Category
	}
	return CategoryInternal
}
