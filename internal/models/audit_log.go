package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is one persisted workflow transition record
type AuditLogEntry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	OldState  string    `json:"old_state"`
	NewState  string    `json:"new_state"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAuditLogEntry creates an entry with a generated ID
func NewAuditLogEntry(projectID, oldState, newState, actorID string, occurredAt time.Time) *AuditLogEntry {
	return &AuditLogEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		OldState:  oldState,
		NewState:  newState,
		ActorID:   actorID,
		CreatedAt: occurredAt,
	}
}
