package tts

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for the narration system.
var (
	// Content errors
	ErrNoContent = errors.New("nothing to read")

	// Controller errors
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrInvalidUnitIndex = errors.New("invalid unit index")

	// Highlight errors
	ErrNoHighlightTarget = errors.New("no attached highlight target")

	// Narration errors
	ErrNarrationFailed    = errors.New("narration failed")
	ErrEngineNotAvailable = errors.New("narration engine is not available")
	ErrVoiceNotFound      = errors.New("requested voice not found")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRecoverableError checks if an error is recoverable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, ErrEngineNotAvailable),
		errors.Is(err, ErrInvalidConfig):
		return false
	}
	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for problems that do not stop playback.
	SeverityWarning
	// SeverityError is for errors that prevent normal operation.
	SeverityError
)

// String returns the string representation of the severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error provides detailed error information.
type Error struct {
	Err       error          // The underlying error
	Component string         // Component that generated the error
	Action    string         // Action being performed when the error occurred
	Severity  ErrorSeverity  // Severity of the error
	Timestamp time.Time      // When the error occurred
	Context   map[string]any // Additional context
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return "unknown narration error"
	}
	if e.Component == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *Error) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewError creates a new error with context.
func NewError(err error, component, action string) *Error {
	return &Error{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
}

// WithSeverity sets the error severity.
func (e *Error) WithSeverity(severity ErrorSeverity) *Error {
	e.Severity = severity
	return e
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
