package models

// ConflictDetectionResult is the transient verdict of one detection
// run. It is never persisted as its own entity: the graph maintainer
// writes its content onto the involved projects.
//
// SpatialConflicts and TemporalConflicts coincide when both filters are
// applied jointly; a spatially-near but temporally-disjoint project is
// not a conflict at all.
type ConflictDetectionResult struct {
	HasConflict          bool          `json:"has_conflict"`
	SpatialConflicts     []*Project    `json:"spatial_conflicts"`
	TemporalConflicts    []*Project    `json:"temporal_conflicts"`
	MoratoriumViolations []*Moratorium `json:"moratorium_violations"`
}

// ConflictingProjectIDs returns the ids of the spatial conflicts in
// result order
func (r *ConflictDetectionResult) ConflictingProjectIDs() []string {
	ids := make([]string, 0, len(r.SpatialConflicts))
	for _, p := range r.SpatialConflicts {
		ids = append(ids, p.ID.String())
	}
	return ids
}
