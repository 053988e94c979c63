package errors

import (
	"fmt"
)

// CascadeError is the structured error type for credcascade.
// It carries enough context for logging, CLI presentation and retry decisions.
type CascadeError struct {
	// Code is the unique error code (e.g., "ERR_401_MALFORMED_ENTITY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Index, Entity, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *CascadeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CascadeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This lets package-level sentinels built with New match any error carrying
// the same code.
func (e *CascadeError) Is(target error) bool {
	if t, ok := target.(*CascadeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *CascadeError) WithDetail(key, value string) *CascadeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *CascadeError) WithSuggestion(suggestion string) *CascadeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new CascadeError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *CascadeError {
	return &CascadeError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CascadeError from an existing error.
// The error's message becomes the CascadeError message.
func Wrap(code string, err error) *CascadeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *CascadeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// EntityError creates an error for an entity that cannot be processed.
func EntityError(message string, cause error) *CascadeError {
	return New(ErrCodeMalformedEntity, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *CascadeError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable reports whether any CascadeError in err's chain is retryable.
func IsRetryable(err error) bool {
	var ce *CascadeError
	if As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var ce *CascadeError
	if As(err, &ce) {
		return ce.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code of the outermost CascadeError in err's chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var ce *CascadeError
	if As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CascadeError.
func GetCategory(err error) Category {
	var ce *CascadeError
	if As(err, &ce) {
		return ce.Category
	}
	return ""
}
