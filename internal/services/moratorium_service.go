package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/internal/repositories"
	"github.com/jhruby/digplan/pkg/logger"
)

// MoratoriumService owns moratorium creation and deletion. Both
// operations trigger an asynchronous conflict re-check of the active
// projects near the affected area.
type MoratoriumService struct {
	moratoriumRepo *repositories.MoratoriumRepository
	projectRepo    *repositories.ProjectRepository
	batch          *ConflictBatchService
}

func NewMoratoriumService(moratoriumRepo *repositories.MoratoriumRepository, projectRepo *repositories.ProjectRepository, batch *ConflictBatchService) *MoratoriumService {
	return &MoratoriumService{
		moratoriumRepo: moratoriumRepo,
		projectRepo:    projectRepo,
		batch:          batch,
	}
}

// CreateMoratorium validates and stores a moratorium, then re-checks
// nearby active projects in the background
func (s *MoratoriumService) CreateMoratorium(moratorium *models.Moratorium) error {
	if err := moratorium.Validate(); err != nil {
		return err
	}

	if moratorium.CreatedBy == uuid.Nil {
		return errors.New("creator ID is required")
	}

	if err := s.moratoriumRepo.Create(moratorium); err != nil {
		return err
	}

	go s.recheckNearby(moratorium.Geometry)
	return nil
}

// GetMoratoriumByID retrieves a moratorium by ID
func (s *MoratoriumService) GetMoratoriumByID(id string) (*models.Moratorium, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New("invalid moratorium ID format")
	}

	return s.moratoriumRepo.GetByID(id)
}

// DeleteMoratorium removes a moratorium. Only its creator may delete
// it; affected projects are re-checked afterwards so stale violations
// clear.
func (s *MoratoriumService) DeleteMoratorium(id string, actorID string) error {
	moratorium, err := s.moratoriumRepo.GetByID(id)
	if err != nil {
		return err
	}

	if moratorium.CreatedBy.String() != actorID {
		return ErrNotMoratoriumCreator
	}

	if err := s.moratoriumRepo.Delete(id); err != nil {
		return err
	}

	go s.recheckNearby(moratorium.Geometry)
	return nil
}

// recheckNearby re-runs detection for active projects around the
// moratorium area. Failures are logged; the periodic sweep repairs
// anything missed here.
func (s *MoratoriumService) recheckNearby(geometry models.Geometry) {
	bbox := geometry.BoundingBox().Expand(ConflictBufferMeters)
	projects, err := s.projectRepo.FindActiveNear(bbox, "")
	if err != nil {
		logger.WithError(err).Error("Failed to find projects for moratorium re-check")
		return
	}

	if len(projects) == 0 {
		return
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID.String())
	}

	outcomes := s.batch.RunBatch(context.Background(), ids)

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	logger.WithFields(map[string]interface{}{
		"projects": len(ids),
		"failed":   failed,
	}).Info("Moratorium re-check finished")
}

// Common errors
var (
	ErrNotMoratoriumCreator = errors.New("only the creator may delete this moratorium")
)
