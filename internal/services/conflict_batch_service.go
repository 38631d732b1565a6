package services

import (
	"context"
	"sync"
	"time"

	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/pkg/logger"
)

const (
	// BatchGroupSize bounds how many detections run concurrently
	BatchGroupSize = 3
	// BatchGroupDelay smooths store load between groups
	BatchGroupDelay = 100 * time.Millisecond
	// DetectionTimeout bounds a single project's detection run
	DetectionTimeout = 10 * time.Second
)

// ProjectLoader is the persistence boundary the batch runner reads
// projects through
type ProjectLoader interface {
	GetByID(id string) (*models.Project, error)
	GetActiveIDs() ([]string, error)
}

// Detector runs one conflict detection
type Detector interface {
	DetectConflicts(ctx context.Context, geometry models.Geometry, interval models.DateInterval, excludeProjectID string) (*models.ConflictDetectionResult, error)
}

// ResultApplier persists a detection verdict
type ResultApplier interface {
	ApplyConflictResult(ctx context.Context, projectID string, result *models.ConflictDetectionResult) error
}

// BatchOutcome is the per-project result of a batch run: either a
// detection result or the error that prevented one
type BatchOutcome struct {
	Result *models.ConflictDetectionResult
	Err    error
}

// ConflictBatchService re-evaluates conflicts for many projects with
// bounded concurrency. One project's failure never aborts the batch;
// overall success is partial by design.
type ConflictBatchService struct {
	projects ProjectLoader
	detector Detector
	applier  ResultApplier
	timeout  time.Duration
}

func NewConflictBatchService(projects ProjectLoader, detector Detector, applier ResultApplier) *ConflictBatchService {
	return &ConflictBatchService{
		projects: projects,
		detector: detector,
		applier:  applier,
		timeout:  DetectionTimeout,
	}
}

// RunBatch processes the ids in fixed-size groups, detections within a
// group running concurrently and a short pause inserted between
// groups. Every id appears in the returned map.
func (s *ConflictBatchService) RunBatch(ctx context.Context, projectIDs []string) map[string]BatchOutcome {
	outcomes := make(map[string]BatchOutcome, len(projectIDs))
	var mu sync.Mutex

	for start := 0; start < len(projectIDs); start += BatchGroupSize {
		end := start + BatchGroupSize
		if end > len(projectIDs) {
			end = len(projectIDs)
		}
		group := projectIDs[start:end]

		var wg sync.WaitGroup
		for _, id := range group {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				outcome := s.runOne(ctx, id)
				mu.Lock()
				outcomes[id] = outcome
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		if end < len(projectIDs) {
			select {
			case <-ctx.Done():
				for _, id := range projectIDs[end:] {
					outcomes[id] = BatchOutcome{Err: ctx.Err()}
				}
				return outcomes
			case <-time.After(BatchGroupDelay):
			}
		}
	}

	return outcomes
}

// RunAllActive re-evaluates every project in an active state
func (s *ConflictBatchService) RunAllActive(ctx context.Context) (map[string]BatchOutcome, error) {
	ids, err := s.projects.GetActiveIDs()
	if err != nil {
		return nil, err
	}

	logger.WithField("projects", len(ids)).Info("Re-running conflict detection for all active projects")
	return s.RunBatch(ctx, ids), nil
}

func (s *ConflictBatchService) runOne(ctx context.Context, id string) BatchOutcome {
	project, err := s.projects.GetByID(id)
	if err != nil {
		return BatchOutcome{Err: err}
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.detector.DetectConflicts(detectCtx, project.Geometry, project.Interval, id)
	if err != nil {
		logger.WithError(err).WithField("project_id", id).Warn("Batch detection failed for project")
		return BatchOutcome{Err: err}
	}

	if err := s.applier.ApplyConflictResult(ctx, id, result); err != nil {
		return BatchOutcome{Err: err}
	}

	return BatchOutcome{Result: result}
}
