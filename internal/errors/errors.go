package errors

import (
	"errors"
	"fmt"
)

// WorkflowError is the structured error type for wfkit. It carries enough
// context to log a failure and to show it to the user as a Script Filter
// item. Category, Severity and Retryable follow from Code.
type WorkflowError struct {
	Code     string // ERR_<nnn>_<NAME>, see codes.go
	Message  string
	Category Category
	Severity Severity

	// Details end up in debug output and logs, never in the Alfred item.
	Details map[string]string
	Cause   error

	Retryable bool

	// Suggestion tells the user how to fix the problem.
	Suggestion string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// Is matches another WorkflowError by code, so codes work as sentinels:
//
//	errors.Is(err, errors.New(errors.ErrCodeKeychainNotFound, "", nil))
func (e *WorkflowError) Is(target error) bool {
	if t, ok := target.(*WorkflowError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *WorkflowError) WithDetail(key, value string) *WorkflowError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *WorkflowError) WithSuggestion(suggestion string) *WorkflowError {
	e.Suggestion = suggestion
	return e
}

// New creates a new WorkflowError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *WorkflowError {
	return &WorkflowError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a WorkflowError from an existing error.
// The error's message becomes the WorkflowError message.
func Wrap(code string, err error) *WorkflowError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *WorkflowError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *WorkflowError {
	return New(ErrCodeFileNotFound, message, cause)
}

// NetworkError creates a network-related error.
// Network errors are retryable.
func NetworkError(message string, cause error) *WorkflowError {
	return New(ErrCodeNetworkUnavailable, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *WorkflowError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *WorkflowError {
	return New(ErrCodeInternal, message, cause)
}

// As finds the first WorkflowError in err's chain.
func As(err error) (*WorkflowError, bool) {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// IsRetryable reports whether any WorkflowError in err's chain is retryable.
func IsRetryable(err error) bool {
	we, ok := As(err)
	return ok && we.Retryable
}

// IsFatal reports whether err has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	we, ok := As(err)
	return ok && we.Severity == SeverityFatal
}

// GetCode extracts the error code from a WorkflowError.
// Returns empty string if err has no WorkflowError in its chain.
func GetCode(err error) string {
	if we, ok := As(err); ok {
		return we.Code
	}
	return ""
}

// GetCategory extracts the category from a WorkflowError.
// Returns empty string if err has no WorkflowError in its chain.
func GetCategory(err error) Category {
	if we, ok := As(err); ok {
		return we.Category
	}
	return ""
}
