package services

import (
	"context"

	"github.com/jhruby/digplan/internal/models"
)

// ConflictBufferMeters is the fixed spatial safety margin around
// underground works. Policy constant, not user-configurable.
const ConflictBufferMeters = 20.0

// ProjectFinder is the persistence boundary for spatial project
// candidate queries
type ProjectFinder interface {
	FindActiveNear(bbox models.BBox, excludeID string) ([]*models.Project, error)
}

// MoratoriumFinder is the persistence boundary for moratorium
// candidate queries
type MoratoriumFinder interface {
	FindOverlapping(bbox models.BBox, interval models.DateInterval) ([]*models.Moratorium, error)
}

// SpatialQueryService translates a geometry and interval into the two
// primitive candidate queries. Both queries are read-only and safe to
// call concurrently; they return candidates only and never decide
// conflict themselves.
type SpatialQueryService struct {
	projects    ProjectFinder
	moratoriums MoratoriumFinder
}

func NewSpatialQueryService(projects ProjectFinder, moratoriums MoratoriumFinder) *SpatialQueryService {
	return &SpatialQueryService{
		projects:    projects,
		moratoriums: moratoriums,
	}
}

// FindActiveProjectsNear returns projects in active states whose
// geometry lies within bufferMeters of the input geometry. The store
// prefilters by bounding box; the exact buffered-distance test runs
// here. Interval filtering is deliberately left to the caller so the
// spatial and temporal dimensions stay independently testable.
func (s *SpatialQueryService) FindActiveProjectsNear(ctx context.Context, geometry models.Geometry, bufferMeters float64, excludeID string) ([]*models.Project, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bbox := geometry.BoundingBox().Expand(bufferMeters)
	candidates, err := s.projects.FindActiveNear(bbox, excludeID)
	if err != nil {
		return nil, err
	}

	var near []*models.Project
	for _, candidate := range candidates {
		if geometry.WithinDistance(candidate.Geometry, bufferMeters) {
			near = append(near, candidate)
		}
	}

	return near, nil
}

// FindOverlappingMoratoriums returns moratoriums whose validity
// intersects the interval and whose geometry intersects the input
// geometry
func (s *SpatialQueryService) FindOverlappingMoratoriums(ctx context.Context, geometry models.Geometry, interval models.DateInterval) ([]*models.Moratorium, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if err := interval.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := s.moratoriums.FindOverlapping(geometry.BoundingBox(), interval)
	if err != nil {
		return nil, err
	}

	var overlapping []*models.Moratorium
	for _, candidate := range candidates {
		if interval.Overlaps(candidate.Validity) && geometry.Intersects(candidate.Geometry) {
			overlapping = append(overlapping, candidate)
		}
	}

	return overlapping, nil
}
