package tts

import (
	"errors"
	"fmt"
	"testing"
)

// TestIsRecoverableError tests recoverable error classification.
func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"narration failed", ErrNarrationFailed, true},
		{"no content", ErrNoContent, true},
		{"no highlight target", ErrNoHighlightTarget, true},
		{"engine not available", ErrEngineNotAvailable, false},
		{"invalid config", ErrInvalidConfig, false},
		{"wrapped invalid config", fmt.Errorf("loading: %w", ErrInvalidConfig), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverableError(tt.err); got != tt.want {
				t.Errorf("IsRecoverableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestError tests the detailed error type.
func TestError(t *testing.T) {
	e := NewError(ErrNarrationFailed, "controller", "speak")

	if got, want := e.Error(), "controller: speak: narration failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, ErrNarrationFailed) {
		t.Error("errors.Is should see the underlying error")
	}
	if !e.IsRecoverable() {
		t.Error("narration failures are recoverable")
	}
	if e.Severity != SeverityError {
		t.Errorf("default severity = %v, want %v", e.Severity, SeverityError)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

// TestErrorWithContext tests chaining severity and context.
func TestErrorWithContext(t *testing.T) {
	e := NewError(ErrVoiceNotFound, "ui", "select").
		WithSeverity(SeverityWarning).
		WithContext("voice", "x").
		WithContext("count", 3)

	if e.Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", e.Severity)
	}
	if e.Context["voice"] != "x" || e.Context["count"] != 3 {
		t.Errorf("context = %v", e.Context)
	}

	var bare Error
	bare.WithContext("k", 1)
	if bare.Context["k"] != 1 {
		t.Error("WithContext should allocate the map")
	}
}

// TestErrorNil tests Error with nil parts.
func TestErrorNil(t *testing.T) {
	if got := (&Error{}).Error(); got != "unknown narration error" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&Error{Err: ErrNoContent}).Error(); got != ErrNoContent.Error() {
		t.Errorf("Error() without component = %q", got)
	}
}

// TestErrorUniqueness tests that all error messages are unique.
func TestErrorUniqueness(t *testing.T) {
	all := []error{
		ErrNoContent, ErrInvalidState, ErrInvalidUnitIndex, ErrNoHighlightTarget,
		ErrNarrationFailed, ErrEngineNotAvailable, ErrVoiceNotFound, ErrInvalidConfig,
	}
	seen := make(map[string]bool)
	for _, err := range all {
		if seen[err.Error()] {
			t.Errorf("duplicate error message %q", err.Error())
		}
		seen[err.Error()] = true
	}
}

// TestErrorSeverityString tests severity names.
func TestErrorSeverityString(t *testing.T) {
	tests := []struct {
		s    ErrorSeverity
		want string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{ErrorSeverity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
