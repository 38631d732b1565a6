package models

import (
	"errors"
	"fmt"
)

// ValidationError is a user-facing field validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrInvalidGeometry marks malformed or empty geometry payloads.
// Detection refuses to run on such input instead of treating it as
// "no conflict".
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrDetectionTimeout is returned when a detection run exceeds its
// caller-supplied deadline
var ErrDetectionTimeout = errors.New("conflict detection timed out")

// InvalidTransitionError is returned when a requested state change is
// not in the workflow transition table
type InvalidTransitionError struct {
	From ProjectState
	To   ProjectState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ConflictDetectionFailedError wraps an infrastructure failure during
// detection. It must propagate: absence of evidence is not evidence of
// absence, so a failed run is never reported as conflict-free.
type ConflictDetectionFailedError struct {
	Cause error
}

func (e *ConflictDetectionFailedError) Error() string {
	return fmt.Sprintf("conflict detection failed: %v", e.Cause)
}

func (e *ConflictDetectionFailedError) Unwrap() error {
	return e.Cause
}
