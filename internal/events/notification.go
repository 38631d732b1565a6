package events

import (
	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/pkg/logger"
)

// NotificationSubscriber records notification intents for conflicts
// and submissions. Actual delivery (email, portal messages) is handled
// by an external system; this subscriber only logs the dispatch.
type NotificationSubscriber struct{}

func NewNotificationSubscriber() *NotificationSubscriber {
	return &NotificationSubscriber{}
}

func (s *NotificationSubscriber) Name() string {
	return "notification"
}

func (s *NotificationSubscriber) Handle(event models.Event) error {
	switch e := event.(type) {
	case models.ConflictDetectedEvent:
		ids := make([]string, 0, len(e.ConflictingProjects))
		for _, p := range e.ConflictingProjects {
			ids = append(ids, p.ID.String())
		}
		logger.WithFields(map[string]interface{}{
			"project_id":            e.Project.ID.String(),
			"conflicting_projects":  ids,
			"moratorium_violations": len(e.MoratoriumViolations),
		}).Info("Notifying applicants about detected conflicts")
	case models.StateChangeEvent:
		if e.NewState == models.StatePendingApproval {
			logger.WithFields(map[string]interface{}{
				"project_id": e.ProjectID,
				"actor_id":   e.ActorID,
			}).Info("Notifying coordinators about new submission")
		}
	}
	return nil
}
