package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func moratoriumArea() Geometry {
	return NewPolygon(
		Coordinate{14.43, 50.07},
		Coordinate{14.45, 50.07},
		Coordinate{14.45, 50.09},
		Coordinate{14.43, 50.09},
		Coordinate{14.43, 50.07},
	)
}

func TestMoratoriumValidate(t *testing.T) {
	validity := DateInterval{Start: day(2024, 1, 1), End: day(2024, 12, 31)}

	testCases := []struct {
		name        string
		mutate      func(m *Moratorium)
		expectedErr error
	}{
		{
			name:   "Valid moratorium",
			mutate: func(m *Moratorium) {},
		},
		{
			name:        "Municipality required",
			mutate:      func(m *Moratorium) { m.MunicipalityCode = "" },
			expectedErr: ErrMoratoriumMunicipalityRequired,
		},
		{
			name:        "Reason required",
			mutate:      func(m *Moratorium) { m.Reason = "" },
			expectedErr: ErrMoratoriumReasonRequired,
		},
		{
			name:        "Point geometry rejected",
			mutate:      func(m *Moratorium) { m.Geometry = NewPoint(14.44, 50.08) },
			expectedErr: ErrMoratoriumPointGeometry,
		},
		{
			name: "Line geometry accepted",
			mutate: func(m *Moratorium) {
				m.Geometry = NewLineString(Coordinate{14.43, 50.07}, Coordinate{14.45, 50.09})
			},
		},
		{
			name: "Validity over five years rejected",
			mutate: func(m *Moratorium) {
				m.Validity = DateInterval{Start: day(2024, 1, 1), End: day(2029, 1, 2)}
			},
			expectedErr: ErrMoratoriumTooLong,
		},
		{
			name: "Validity of exactly five years accepted",
			mutate: func(m *Moratorium) {
				m.Validity = DateInterval{Start: day(2024, 1, 1), End: day(2029, 1, 1)}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMoratorium("CZ0100", uuid.New(), moratoriumArea(), validity, "gas main reconstruction")
			tc.mutate(m)

			err := m.Validate()
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMoratoriumValidateInvalidInterval(t *testing.T) {
	m := NewMoratorium("CZ0100", uuid.New(), moratoriumArea(), DateInterval{Start: day(2024, 6, 1), End: day(2024, 1, 1)}, "resurfacing")
	var validationErr *ValidationError
	assert.ErrorAs(t, m.Validate(), &validationErr)
}

func TestNewMoratorium(t *testing.T) {
	creator := uuid.New()
	m := NewMoratorium("CZ0100", creator, moratoriumArea(), DateInterval{Start: day(2024, 1, 1), End: day(2024, 12, 31)}, "resurfacing")

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, creator, m.CreatedBy)
	assert.Nil(t, m.Exceptions)
	assert.WithinDuration(t, time.Now(), m.CreatedAt, time.Minute)
}
