package models

import (
	"fmt"
	"time"
)

// DateInterval is a closed date range [Start, End], both inclusive.
// Day precision: two intervals meeting on the same day overlap, while
// adjacent days do not.
type DateInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateInterval creates a validated interval
func NewDateInterval(start, end time.Time) (DateInterval, error) {
	i := DateInterval{Start: start, End: end}
	if err := i.Validate(); err != nil {
		return DateInterval{}, err
	}
	return i, nil
}

// Validate checks the interval invariant End >= Start
func (i DateInterval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return &ValidationError{Field: "interval", Message: "Start and end dates are required"}
	}
	if i.End.Before(i.Start) {
		return &ValidationError{Field: "interval", Message: "End date must not precede start date"}
	}
	return nil
}

// Overlaps reports whether two closed intervals share at least one day
func (i DateInterval) Overlaps(other DateInterval) bool {
	return !i.Start.After(other.End) && !other.Start.After(i.End)
}

// Days returns the inclusive length of the interval in days
func (i DateInterval) Days() int {
	return int(i.End.Sub(i.Start).Hours()/24) + 1
}

func (i DateInterval) String() string {
	return fmt.Sprintf("%s..%s", i.Start.Format("2006-01-02"), i.End.Format("2006-01-02"))
}
