// Package errors provides a lightweight structured error type (CatalogError)
// for category-based classification in HTTP adapters and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a catlink error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryLink       ErrorCategory = "link"
	CategoryNotFound   ErrorCategory = "not_found"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryEvents  ErrorCategory = "events"

	// Storage errors
	CategoryStorage ErrorCategory = "storage"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// CatalogError is a structured error with category, retryability, and context
type CatalogError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// Build returns the error itself; it terminates WithContext/WithSeverity chains.
func (e *CatalogError) Build() *CatalogError {
	return e
}

// ContextFields carries structured context for CatalogError
type ContextFields map[string]any

// Error implements the error interface
func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *CatalogError) WithContext(key string, value any) *CatalogError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the severity of the error
func (e *CatalogError) WithSeverity(severity ErrorSeverity) *CatalogError {
	e.Severity = severity
	return e
}

// New creates a new CatalogError
func New(category ErrorCategory, severity ErrorSeverity, message string) *CatalogError {
	return &CatalogError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new CatalogError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *CatalogError {
	return &CatalogError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable CatalogError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *CatalogError {
	return &CatalogError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ce, ok := err.(*CatalogError); ok {
		return ce.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if ce, ok := err.(*CatalogError); ok {
		return ce.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a CatalogError
func GetCategory(err error) ErrorCategory {
	if ce, ok := err.(*CatalogError); ok {
		return ce.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error (400 Bad Request)
func ValidationError(message string) *CatalogError {
	return &CatalogError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// NotFoundError creates a new not-found error (404)
func NotFoundError(message string) *CatalogError {
	return &CatalogError{
		Category:  CategoryNotFound,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// DaemonError creates a new daemon error (service unavailable)
func DaemonError(message string) *CatalogError {
	return &CatalogError{
		Category:  CategoryDaemon,
		Severity:  SeverityError,
		Message:   message,
		Retryable: false,
	}
}

// WrapError wraps an existing error with a new CatalogError
func WrapError(err error, category ErrorCategory, message string) *CatalogError {
	return &CatalogError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
