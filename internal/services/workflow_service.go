package services

import (
	"context"
	"time"

	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/pkg/logger"
)

// transitionTable is the single authority on legal lifecycle moves
var transitionTable = map[models.ProjectState][]models.ProjectState{
	models.StateDraft:           {models.StateForwardPlanning, models.StatePendingApproval},
	models.StateForwardPlanning: {models.StatePendingApproval},
	models.StatePendingApproval: {models.StateApproved, models.StateRejected},
	models.StateApproved:        {models.StateInProgress, models.StateCancelled},
	models.StateInProgress:      {models.StateCompleted},
	models.StateCompleted:       {},
	models.StateRejected:        {},
	models.StateCancelled:       {},
}

// ProjectStateStore is the persistence boundary for workflow moves
type ProjectStateStore interface {
	GetByID(id string) (*models.Project, error)
	UpdateState(id string, state models.ProjectState) error
}

// EventPublisher accepts fire-and-forget domain events
type EventPublisher interface {
	Publish(event models.Event)
}

// WorkflowService validates and executes project lifecycle
// transitions. Every successful transition is reported as a
// StateChangeEvent; the service never writes audit records itself.
type WorkflowService struct {
	store     ProjectStateStore
	detector  Detector
	applier   ResultApplier
	publisher EventPublisher
}

func NewWorkflowService(store ProjectStateStore, detector Detector, applier ResultApplier, publisher EventPublisher) *WorkflowService {
	return &WorkflowService{
		store:     store,
		detector:  detector,
		applier:   applier,
		publisher: publisher,
	}
}

// CanTransition reports whether the move is in the transition table
func (s *WorkflowService) CanTransition(from, to models.ProjectState) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RequestTransition moves a project to the target state.
//
// An illegal move fails with InvalidTransitionError and leaves the
// stored project untouched. Entering pending_approval runs conflict
// detection synchronously before the transition completes; conflicts
// are advisory and never block the move, but a detection failure does
// block it so a submission is never silently treated as conflict-free.
func (s *WorkflowService) RequestTransition(ctx context.Context, projectID string, to models.ProjectState, actorID string) (*models.Project, error) {
	project, err := s.store.GetByID(projectID)
	if err != nil {
		return nil, err
	}

	if !s.CanTransition(project.State, to) {
		return nil, &models.InvalidTransitionError{From: project.State, To: to}
	}

	var result *models.ConflictDetectionResult
	if to == models.StatePendingApproval {
		result, err = s.detector.DetectConflicts(ctx, project.Geometry, project.Interval, projectID)
		if err != nil {
			return nil, err
		}
	}

	oldState := project.State
	if err := s.store.UpdateState(projectID, to); err != nil {
		return nil, err
	}
	project.State = to

	if result != nil {
		if err := s.applier.ApplyConflictResult(ctx, projectID, result); err != nil {
			logger.WithError(err).WithField("project_id", projectID).Warn("Failed to persist conflict result after submission")
		}
		project.HasConflict = result.HasConflict
		project.ConflictingProjectIDs = result.ConflictingProjectIDs()

		if result.HasConflict {
			s.publisher.Publish(models.ConflictDetectedEvent{
				Project:              project,
				ConflictingProjects:  result.SpatialConflicts,
				MoratoriumViolations: result.MoratoriumViolations,
				OccurredAt:           time.Now(),
			})
		}
	}

	s.publisher.Publish(models.StateChangeEvent{
		ProjectID:  projectID,
		OldState:   oldState,
		NewState:   to,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})

	logger.WithFields(map[string]interface{}{
		"project_id": projectID,
		"old_state":  oldState,
		"new_state":  to,
		"actor_id":   actorID,
	}).Info("Project transitioned")

	return project, nil
}
