package services

import (
	"context"
	"errors"

	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/pkg/logger"
)

// ConflictDetectionService orchestrates spatial, temporal and
// moratorium checks into one consistency verdict
type ConflictDetectionService struct {
	spatial *SpatialQueryService
}

func NewConflictDetectionService(spatial *SpatialQueryService) *ConflictDetectionService {
	return &ConflictDetectionService{
		spatial: spatial,
	}
}

type projectQuery struct {
	projects []*models.Project
	err      error
}

type moratoriumQuery struct {
	moratoriums []*models.Moratorium
	err         error
}

// DetectConflicts computes the conflict verdict for a geometry and
// interval. The project query and the moratorium query are independent
// and run in parallel; results merge only after both complete.
//
// Infrastructure failures surface as ConflictDetectionFailedError and
// a context deadline as ErrDetectionTimeout, never as a silent
// "no conflict".
func (s *ConflictDetectionService) DetectConflicts(ctx context.Context, geometry models.Geometry, interval models.DateInterval, excludeProjectID string) (*models.ConflictDetectionResult, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	projectCh := make(chan projectQuery, 1)
	moratoriumCh := make(chan moratoriumQuery, 1)

	go func() {
		projects, err := s.spatial.FindActiveProjectsNear(ctx, geometry, ConflictBufferMeters, excludeProjectID)
		projectCh <- projectQuery{projects: projects, err: err}
	}()

	go func() {
		moratoriums, err := s.spatial.FindOverlappingMoratoriums(ctx, geometry, interval)
		moratoriumCh <- moratoriumQuery{moratoriums: moratoriums, err: err}
	}()

	var (
		near        []*models.Project
		moratoriums []*models.Moratorium
	)

	for i := 0; i < 2; i++ {
		select {
		case <-ctx.Done():
			return nil, detectionError(ctx.Err())
		case pq := <-projectCh:
			if pq.err != nil {
				return nil, detectionError(pq.err)
			}
			near = pq.projects
		case mq := <-moratoriumCh:
			if mq.err != nil {
				return nil, detectionError(mq.err)
			}
			moratoriums = mq.moratoriums
		}
	}

	// Temporal overlap is the further necessary condition: a
	// spatially-near but temporally-disjoint project is not a conflict.
	var conflicts []*models.Project
	for _, p := range near {
		if interval.Overlaps(p.Interval) {
			conflicts = append(conflicts, p)
		}
	}

	result := &models.ConflictDetectionResult{
		HasConflict:          len(conflicts) > 0 || len(moratoriums) > 0,
		SpatialConflicts:     conflicts,
		TemporalConflicts:    conflicts,
		MoratoriumViolations: moratoriums,
	}

	if result.HasConflict {
		logger.WithFields(map[string]interface{}{
			"exclude_project_id":    excludeProjectID,
			"spatial_conflicts":     len(conflicts),
			"moratorium_violations": len(moratoriums),
		}).Info("Conflicts detected")
	}

	return result, nil
}

func detectionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrDetectionTimeout
	}
	if errors.Is(err, models.ErrInvalidGeometry) {
		return err
	}
	return &models.ConflictDetectionFailedError{Cause: err}
}
