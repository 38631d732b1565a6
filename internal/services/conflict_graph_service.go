package services

import (
	"context"

	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/pkg/logger"
)

// ConflictStore is the persistence boundary for conflict-field updates
type ConflictStore interface {
	SetConflictFields(id string, hasConflict bool, conflictingIDs []string) error
	AddConflictRef(id, otherID string) (bool, error)
}

// ConflictGraphService persists detection verdicts onto the involved
// projects, keeping the conflict relation symmetric: if A lists B
// then B lists A.
type ConflictGraphService struct {
	store ConflictStore
}

func NewConflictGraphService(store ConflictStore) *ConflictGraphService {
	return &ConflictGraphService{
		store: store,
	}
}

// ApplyConflictResult rewrites the source project's conflict fields
// from the result, then mirrors the source id onto every conflicting
// project. The mirror updates are independent best-effort writes:
// a failed one is logged and repaired by the next detection run, so
// partial completion is retried rather than rolled back.
func (s *ConflictGraphService) ApplyConflictResult(ctx context.Context, projectID string, result *models.ConflictDetectionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.SetConflictFields(projectID, result.HasConflict, result.ConflictingProjectIDs()); err != nil {
		return err
	}

	for _, conflicting := range result.SpatialConflicts {
		added, err := s.store.AddConflictRef(conflicting.ID.String(), projectID)
		if err != nil {
			logger.WithError(err).WithFields(map[string]interface{}{
				"project_id":     projectID,
				"conflicting_id": conflicting.ID.String(),
			}).Warn("Mirror conflict update failed, will self-heal on next run")
			continue
		}
		if added {
			logger.WithFields(map[string]interface{}{
				"project_id":     projectID,
				"conflicting_id": conflicting.ID.String(),
			}).Debug("Added mirror conflict reference")
		}
	}

	return nil
}
