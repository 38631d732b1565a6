package workers

import (
	"context"
	"time"

	"github.com/jhruby/digplan/internal/services"
	"github.com/jhruby/digplan/pkg/logger"
)

// SweepWorker periodically re-evaluates conflicts for all active
// projects, repairing any asymmetry left behind by failed mirror
// updates or concurrent detections
type SweepWorker struct {
	*BaseWorker
	batch    *services.ConflictBatchService
	interval time.Duration
}

// NewSweepWorker creates a new conflict sweep worker
func NewSweepWorker(workerID string, batch *services.ConflictBatchService, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		BaseWorker: NewBaseWorker(workerID),
		batch:      batch,
		interval:   interval,
	}
}

// Start begins the sweep loop
func (w *SweepWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.WithFields(map[string]interface{}{
		"worker_id": w.WorkerID,
		"interval":  w.interval.String(),
	}).Info("Conflict sweep worker started")

	for {
		select {
		case <-ctx.Done():
			logger.WithField("worker_id", w.WorkerID).Info("Sweep worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			logger.WithField("worker_id", w.WorkerID).Info("Sweep worker stopping")
			return nil
		case <-time.After(w.interval):
			w.runSweep(ctx)
		}
	}
}

// runSweep executes one maintenance pass over all active projects
func (w *SweepWorker) runSweep(ctx context.Context) {
	started := time.Now()

	outcomes, err := w.batch.RunAllActive(ctx)
	if err != nil {
		logger.WithError(err).WithField("worker_id", w.WorkerID).Error("Sweep failed to list active projects")
		return
	}

	failed := 0
	conflicted := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			continue
		}
		if outcome.Result.HasConflict {
			conflicted++
		}
	}

	logger.WithFields(map[string]interface{}{
		"worker_id":  w.WorkerID,
		"projects":   len(outcomes),
		"conflicted": conflicted,
		"failed":     failed,
		"duration":   time.Since(started).String(),
	}).Info("Conflict sweep finished")
}
