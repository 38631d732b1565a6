package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhruby/digplan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conflictResult(conflicts ...*models.Project) *models.ConflictDetectionResult {
	return &models.ConflictDetectionResult{
		HasConflict:       len(conflicts) > 0,
		SpatialConflicts:  conflicts,
		TemporalConflicts: conflicts,
	}
}

func TestApplyConflictResultSymmetry(t *testing.T) {
	store := newFakeStore()
	_, graph := newEngine(store)

	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))
	location := models.NewPoint(pragueLon, pragueLat)

	source := testProject("Source", models.StatePendingApproval, location, interval)
	other := testProject("Other", models.StateApproved, location, interval)
	store.addProject(source)
	store.addProject(other)

	err := graph.ApplyConflictResult(context.Background(), source.ID.String(), conflictResult(other))
	require.NoError(t, err)

	assert.True(t, source.HasConflict)
	assert.Equal(t, []string{other.ID.String()}, source.ConflictingProjectIDs)

	// Mirror side
	assert.True(t, other.HasConflict)
	assert.Equal(t, []string{source.ID.String()}, other.ConflictingProjectIDs)
}

func TestApplyConflictResultIdempotent(t *testing.T) {
	store := newFakeStore()
	_, graph := newEngine(store)

	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))
	location := models.NewPoint(pragueLon, pragueLat)

	source := testProject("Source", models.StatePendingApproval, location, interval)
	other := testProject("Other", models.StateApproved, location, interval)
	store.addProject(source)
	store.addProject(other)

	for i := 0; i < 3; i++ {
		require.NoError(t, graph.ApplyConflictResult(context.Background(), source.ID.String(), conflictResult(other)))
	}

	assert.Equal(t, []string{other.ID.String()}, source.ConflictingProjectIDs)
	assert.Equal(t, []string{source.ID.String()}, other.ConflictingProjectIDs)
}

func TestApplyConflictResultClearsResolvedConflict(t *testing.T) {
	store := newFakeStore()
	_, graph := newEngine(store)

	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))
	source := testProject("Source", models.StateApproved, models.NewPoint(pragueLon, pragueLat), interval)
	source.HasConflict = true
	source.ConflictingProjectIDs = []string{"stale-id"}
	store.addProject(source)

	err := graph.ApplyConflictResult(context.Background(), source.ID.String(), conflictResult())
	require.NoError(t, err)

	assert.False(t, source.HasConflict)
	assert.Empty(t, source.ConflictingProjectIDs)
}

func TestApplyConflictResultPrimaryWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.setConflictErr = errors.New("database is locked")
	_, graph := newEngine(store)

	err := graph.ApplyConflictResult(context.Background(), "some-id", conflictResult())
	assert.ErrorContains(t, err, "database is locked")
	assert.Zero(t, store.addRefCalls)
}

func TestApplyConflictResultMirrorFailureIsBestEffort(t *testing.T) {
	store := newFakeStore()
	_, graph := newEngine(store)

	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))
	source := testProject("Source", models.StatePendingApproval, models.NewPoint(pragueLon, pragueLat), interval)
	missing := testProject("Gone", models.StateApproved, models.NewPoint(pragueLon, pragueLat), interval)
	store.addProject(source)
	// The mirrored project is not in the store, its update fails

	err := graph.ApplyConflictResult(context.Background(), source.ID.String(), conflictResult(missing))
	require.NoError(t, err)

	// The primary write still landed
	assert.True(t, source.HasConflict)
	assert.Equal(t, []string{missing.ID.String()}, source.ConflictingProjectIDs)
}

func TestApplyConflictResultCancelledContext(t *testing.T) {
	store := newFakeStore()
	_, graph := newEngine(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := graph.ApplyConflictResult(ctx, "some-id", conflictResult())
	assert.ErrorIs(t, err, context.Canceled)
}
