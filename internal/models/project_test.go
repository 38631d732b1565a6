package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStateClassification(t *testing.T) {
	testCases := []struct {
		state    ProjectState
		active   bool
		terminal bool
	}{
		{StateDraft, false, false},
		{StateForwardPlanning, false, false},
		{StatePendingApproval, true, false},
		{StateApproved, true, false},
		{StateInProgress, true, false},
		{StateCompleted, false, true},
		{StateRejected, false, true},
		{StateCancelled, false, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.state), func(t *testing.T) {
			assert.Equal(t, tc.active, tc.state.IsActive())
			assert.Equal(t, tc.terminal, tc.state.IsTerminal())
			assert.True(t, tc.state.IsValid())
		})
	}

	assert.False(t, ProjectState("archived").IsValid())
}

func TestNewProject(t *testing.T) {
	applicant := uuid.New()
	interval := DateInterval{Start: day(2024, 3, 1), End: day(2024, 3, 15)}
	project := NewProject("Vodičkova water main", applicant, NewPoint(14.42, 50.08), interval)

	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.Equal(t, StateDraft, project.State)
	assert.Equal(t, applicant, project.ApplicantID)
	assert.False(t, project.HasConflict)
	assert.Empty(t, project.ConflictingProjectIDs)
	assert.NoError(t, project.Validate())
}

func TestProjectValidate(t *testing.T) {
	interval := DateInterval{Start: day(2024, 3, 1), End: day(2024, 3, 15)}

	t.Run("Name required", func(t *testing.T) {
		project := NewProject("", uuid.New(), NewPoint(14.42, 50.08), interval)
		assert.ErrorIs(t, project.Validate(), ErrProjectNameRequired)
	})

	t.Run("Geometry must be valid", func(t *testing.T) {
		project := NewProject("Dig", uuid.New(), Geometry{Type: "Circle"}, interval)
		assert.ErrorIs(t, project.Validate(), ErrInvalidGeometry)
	})

	t.Run("Interval must be valid", func(t *testing.T) {
		bad := DateInterval{Start: day(2024, 3, 15), End: day(2024, 3, 1)}
		project := NewProject("Dig", uuid.New(), NewPoint(14.42, 50.08), bad)
		var validationErr *ValidationError
		require.ErrorAs(t, project.Validate(), &validationErr)
	})
}

func TestProjectConflictsWith(t *testing.T) {
	project := NewProject("Dig", uuid.New(), NewPoint(14.42, 50.08), DateInterval{Start: day(2024, 3, 1), End: day(2024, 3, 15)})
	other := uuid.New().String()

	assert.False(t, project.ConflictsWith(other))
	project.ConflictingProjectIDs = []string{other}
	assert.True(t, project.ConflictsWith(other))
}
