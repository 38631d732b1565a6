package events

import (
	"github.com/jhruby/digplan/internal/models"
)

// AuditWriter persists audit entries
type AuditWriter interface {
	Create(entry *models.AuditLogEntry) error
}

// AuditSubscriber turns state-change events into persisted audit rows
type AuditSubscriber struct {
	writer AuditWriter
}

func NewAuditSubscriber(writer AuditWriter) *AuditSubscriber {
	return &AuditSubscriber{
		writer: writer,
	}
}

func (s *AuditSubscriber) Name() string {
	return "audit"
}

func (s *AuditSubscriber) Handle(event models.Event) error {
	change, ok := event.(models.StateChangeEvent)
	if !ok {
		return nil
	}

	entry := models.NewAuditLogEntry(
		change.ProjectID,
		string(change.OldState),
		string(change.NewState),
		change.ActorID,
		change.OccurredAt,
	)

	return s.writer.Create(entry)
}
