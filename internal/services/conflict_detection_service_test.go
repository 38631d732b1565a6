package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConflictsSpatialAndTemporalOverlap(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	approved := testProject(
		"Vodovodní přípojka",
		models.StateApproved,
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.January, 15), date(2024, time.January, 25)),
	)
	store.addProject(approved)

	result, err := detection.DetectConflicts(
		context.Background(),
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.January, 20), date(2024, time.January, 30)),
		uuid.New().String(),
	)
	require.NoError(t, err)

	assert.True(t, result.HasConflict)
	require.Len(t, result.SpatialConflicts, 1)
	assert.Equal(t, approved.ID, result.SpatialConflicts[0].ID)
	assert.Equal(t, result.SpatialConflicts, result.TemporalConflicts)
	assert.Empty(t, result.MoratoriumViolations)
}

func TestDetectConflictsTemporallyDisjoint(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	approved := testProject(
		"Plynovod",
		models.StateApproved,
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.January, 1), date(2024, time.January, 14)),
	)
	store.addProject(approved)

	result, err := detection.DetectConflicts(
		context.Background(),
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.January, 15), date(2024, time.January, 25)),
		uuid.New().String(),
	)
	require.NoError(t, err)

	assert.False(t, result.HasConflict)
	assert.Empty(t, result.SpatialConflicts)
}

func TestDetectConflictsBufferBoundary(t *testing.T) {
	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))

	testCases := []struct {
		name        string
		northMeters float64
		conflict    bool
	}{
		{name: "10m away is inside the buffer", northMeters: 10, conflict: true},
		{name: "30m away is outside the buffer", northMeters: 30, conflict: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			detection, _ := newEngine(store)

			nearby := testProject(
				"Kanalizace",
				models.StateInProgress,
				models.NewPoint(pragueLon, pragueLat+latShift(tc.northMeters)),
				interval,
			)
			store.addProject(nearby)

			result, err := detection.DetectConflicts(
				context.Background(),
				models.NewPoint(pragueLon, pragueLat),
				interval,
				uuid.New().String(),
			)
			require.NoError(t, err)
			assert.Equal(t, tc.conflict, result.HasConflict)
		})
	}
}

func TestDetectConflictsIgnoresInactiveAndSelf(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))
	location := models.NewPoint(pragueLon, pragueLat)

	self := testProject("Self", models.StatePendingApproval, location, interval)
	draft := testProject("Draft neighbour", models.StateDraft, location, interval)
	completed := testProject("Finished works", models.StateCompleted, location, interval)
	store.addProject(self)
	store.addProject(draft)
	store.addProject(completed)

	result, err := detection.DetectConflicts(context.Background(), location, interval, self.ID.String())
	require.NoError(t, err)

	assert.False(t, result.HasConflict)
	assert.Empty(t, result.SpatialConflicts)
}

func TestDetectConflictsOrdering(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	interval := mustInterval(date(2024, time.June, 1), date(2024, time.June, 30))
	location := models.NewPoint(pragueLon, pragueLat)

	older := testProject("Older", models.StateApproved, location, interval)
	older.CreatedAt = date(2024, time.January, 1)
	newer := testProject("Newer", models.StateApproved, location, interval)
	newer.CreatedAt = date(2024, time.February, 1)
	store.addProject(older)
	store.addProject(newer)

	result, err := detection.DetectConflicts(context.Background(), location, interval, uuid.New().String())
	require.NoError(t, err)

	require.Len(t, result.SpatialConflicts, 2)
	assert.Equal(t, newer.ID, result.SpatialConflicts[0].ID)
	assert.Equal(t, older.ID, result.SpatialConflicts[1].ID)
}

func TestDetectConflictsMoratoriumViolation(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	area := models.NewPolygon(
		models.Coordinate{pragueLon - 0.01, pragueLat - 0.01},
		models.Coordinate{pragueLon + 0.01, pragueLat - 0.01},
		models.Coordinate{pragueLon + 0.01, pragueLat + 0.01},
		models.Coordinate{pragueLon - 0.01, pragueLat + 0.01},
		models.Coordinate{pragueLon - 0.01, pragueLat - 0.01},
	)
	moratorium := models.NewMoratorium(
		"CZ0100",
		uuid.New(),
		area,
		mustInterval(date(2024, time.January, 1), date(2024, time.December, 31)),
		"freshly resurfaced street",
	)
	store.addMoratorium(moratorium)

	t.Run("Project inside the area during validity", func(t *testing.T) {
		result, err := detection.DetectConflicts(
			context.Background(),
			models.NewPoint(pragueLon, pragueLat),
			mustInterval(date(2024, time.June, 1), date(2024, time.June, 15)),
			uuid.New().String(),
		)
		require.NoError(t, err)

		assert.True(t, result.HasConflict)
		assert.Empty(t, result.SpatialConflicts)
		require.Len(t, result.MoratoriumViolations, 1)
		assert.Equal(t, moratorium.ID, result.MoratoriumViolations[0].ID)
	})

	t.Run("Project after validity ends", func(t *testing.T) {
		result, err := detection.DetectConflicts(
			context.Background(),
			models.NewPoint(pragueLon, pragueLat),
			mustInterval(date(2025, time.June, 1), date(2025, time.June, 15)),
			uuid.New().String(),
		)
		require.NoError(t, err)
		assert.False(t, result.HasConflict)
	})

	t.Run("Project outside the area", func(t *testing.T) {
		result, err := detection.DetectConflicts(
			context.Background(),
			models.NewPoint(pragueLon+0.1, pragueLat),
			mustInterval(date(2024, time.June, 1), date(2024, time.June, 15)),
			uuid.New().String(),
		)
		require.NoError(t, err)
		assert.False(t, result.HasConflict)
	})
}

func TestDetectConflictsInvalidInput(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	t.Run("Invalid geometry", func(t *testing.T) {
		_, err := detection.DetectConflicts(
			context.Background(),
			models.Geometry{Type: "Circle"},
			mustInterval(date(2024, time.June, 1), date(2024, time.June, 15)),
			"",
		)
		assert.ErrorIs(t, err, models.ErrInvalidGeometry)
	})

	t.Run("Invalid interval", func(t *testing.T) {
		_, err := detection.DetectConflicts(
			context.Background(),
			models.NewPoint(pragueLon, pragueLat),
			models.DateInterval{Start: date(2024, time.June, 15), End: date(2024, time.June, 1)},
			"",
		)
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestDetectConflictsQueryFailure(t *testing.T) {
	store := newFakeStore()
	store.findNearErr = errors.New("database is locked")
	detection, _ := newEngine(store)

	result, err := detection.DetectConflicts(
		context.Background(),
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.June, 1), date(2024, time.June, 15)),
		"",
	)

	assert.Nil(t, result)
	var failure *models.ConflictDetectionFailedError
	require.ErrorAs(t, err, &failure)
	assert.ErrorContains(t, failure.Cause, "database is locked")
}

func TestDetectConflictsMoratoriumQueryFailure(t *testing.T) {
	store := newFakeStore()
	store.findMoratErr = errors.New("disk I/O error")
	detection, _ := newEngine(store)

	result, err := detection.DetectConflicts(
		context.Background(),
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.June, 1), date(2024, time.June, 15)),
		"",
	)

	assert.Nil(t, result)
	var failure *models.ConflictDetectionFailedError
	assert.ErrorAs(t, err, &failure)
}

func TestDetectConflictsTimeout(t *testing.T) {
	store := newFakeStore()
	detection, _ := newEngine(store)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result, err := detection.DetectConflicts(
		ctx,
		models.NewPoint(pragueLon, pragueLat),
		mustInterval(date(2024, time.June, 1), date(2024, time.June, 15)),
		"",
	)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrDetectionTimeout)
}
