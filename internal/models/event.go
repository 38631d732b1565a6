package models

import (
	"time"
)

// EventType identifies a domain event kind
type EventType string

const (
	EventTypeStateChange      EventType = "state_change"
	EventTypeConflictDetected EventType = "conflict_detected"
)

// Event is a fire-and-forget domain event consumed by audit logging
// and notification dispatch. Delivery failures never roll back the
// operation that emitted the event.
type Event interface {
	Type() EventType
}

// StateChangeEvent records one successful workflow transition
type StateChangeEvent struct {
	ProjectID  string
	OldState   ProjectState
	NewState   ProjectState
	ActorID    string
	OccurredAt time.Time
}

func (e StateChangeEvent) Type() EventType {
	return EventTypeStateChange
}

// ConflictDetectedEvent reports a detection run that found conflicts
type ConflictDetectedEvent struct {
	Project              *Project
	ConflictingProjects  []*Project
	MoratoriumViolations []*Moratorium
	OccurredAt           time.Time
}

func (e ConflictDetectedEvent) Type() EventType {
	return EventTypeConflictDetected
}
