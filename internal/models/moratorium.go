package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxMoratoriumValidityYears bounds how far into the future a
// moratorium may reach
const MaxMoratoriumValidityYears = 5

// Moratorium is an area- and time-bounded restriction on new
// excavation works. Immutable once created except deletion by its
// creator; it carries no derived fields.
type Moratorium struct {
	ID               uuid.UUID    `json:"id"`
	MunicipalityCode string       `json:"municipality_code"`
	CreatedBy        uuid.UUID    `json:"created_by"`
	Geometry         Geometry     `json:"geometry"`
	Validity         DateInterval `json:"validity"`
	Reason           string       `json:"reason"`
	Exceptions       *string      `json:"exceptions,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewMoratorium creates a moratorium with a generated ID
func NewMoratorium(municipalityCode string, createdBy uuid.UUID, geometry Geometry, validity DateInterval, reason string) *Moratorium {
	return &Moratorium{
		ID:               uuid.New(),
		MunicipalityCode: municipalityCode,
		CreatedBy:        createdBy,
		Geometry:         geometry,
		Validity:         validity,
		Reason:           reason,
		CreatedAt:        time.Now(),
	}
}

func (m *Moratorium) Validate() error {
	if m.MunicipalityCode == "" {
		return ErrMoratoriumMunicipalityRequired
	}
	if m.Reason == "" {
		return ErrMoratoriumReasonRequired
	}
	if err := m.Geometry.Validate(); err != nil {
		return err
	}
	// A point cannot meaningfully close an area to works
	if m.Geometry.Type == GeometryPoint {
		return ErrMoratoriumPointGeometry
	}
	if err := m.Validity.Validate(); err != nil {
		return err
	}
	if m.Validity.End.After(m.Validity.Start.AddDate(MaxMoratoriumValidityYears, 0, 0)) {
		return ErrMoratoriumTooLong
	}
	return nil
}

// Common errors
var (
	ErrMoratoriumMunicipalityRequired = &ValidationError{Field: "municipality_code", Message: "Municipality code is required"}
	ErrMoratoriumReasonRequired       = &ValidationError{Field: "reason", Message: "Moratorium reason is required"}
	ErrMoratoriumPointGeometry        = &ValidationError{Field: "geometry", Message: "Moratorium geometry must be a line or polygon"}
	ErrMoratoriumTooLong              = &ValidationError{Field: "validity", Message: "Moratorium validity must not exceed 5 years"}
)
