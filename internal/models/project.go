package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectState is a stage in the permit approval workflow
type ProjectState string

const (
	StateDraft           ProjectState = "draft"
	StateForwardPlanning ProjectState = "forward_planning"
	StatePendingApproval ProjectState = "pending_approval"
	StateApproved        ProjectState = "approved"
	StateInProgress      ProjectState = "in_progress"
	StateCompleted       ProjectState = "completed"
	StateRejected        ProjectState = "rejected"
	StateCancelled       ProjectState = "cancelled"
)

// ActiveStates are the states considered live for conflict purposes
var ActiveStates = []ProjectState{StateApproved, StateInProgress, StatePendingApproval}

// IsActive reports whether the state counts for conflict detection
func (s ProjectState) IsActive() bool {
	for _, a := range ActiveStates {
		if s == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions
func (s ProjectState) IsTerminal() bool {
	return s == StateCompleted || s == StateRejected || s == StateCancelled
}

// IsValid reports whether the value is a known workflow state
func (s ProjectState) IsValid() bool {
	switch s {
	case StateDraft, StateForwardPlanning, StatePendingApproval, StateApproved,
		StateInProgress, StateCompleted, StateRejected, StateCancelled:
		return true
	}
	return false
}

// Project is a registered excavation/road-work activity. The conflict
// fields (HasConflict, ConflictingProjectIDs) and AffectedMunicipalities
// are derived and maintained by the engine, never set from user input.
type Project struct {
	ID                     uuid.UUID    `json:"id"`
	Name                   string       `json:"name"`
	ApplicantID            uuid.UUID    `json:"applicant_id"`
	Geometry               Geometry     `json:"geometry"`
	Interval               DateInterval `json:"interval"`
	State                  ProjectState `json:"state"`
	HasConflict            bool         `json:"has_conflict"`
	ConflictingProjectIDs  []string     `json:"conflicting_project_ids"`
	AffectedMunicipalities []string     `json:"affected_municipalities"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
	DeletedAt              *time.Time   `json:"deleted_at,omitempty"`
}

// NewProject creates a draft project with a generated ID
func NewProject(name string, applicantID uuid.UUID, geometry Geometry, interval DateInterval) *Project {
	now := time.Now()
	return &Project{
		ID:          uuid.New(),
		Name:        name,
		ApplicantID: applicantID,
		Geometry:    geometry,
		Interval:    interval,
		State:       StateDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrProjectNameRequired
	}
	if err := p.Geometry.Validate(); err != nil {
		return err
	}
	return p.Interval.Validate()
}

// ConflictsWith reports whether the given project id is already listed
func (p *Project) ConflictsWith(id string) bool {
	for _, c := range p.ConflictingProjectIDs {
		if c == id {
			return true
		}
	}
	return false
}

// Common errors
var (
	ErrProjectNameRequired = &ValidationError{Field: "name", Message: "Project name is required"}
)
