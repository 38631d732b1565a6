package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/models"
)

// fakeStore is an in-memory stand-in for the persistence boundary
type fakeStore struct {
	mu          sync.Mutex
	projects    map[string]*models.Project
	moratoriums []*models.Moratorium

	findNearErr     error
	findMoratErr    error
	setConflictErr  error
	addRefErr       error
	updateStateErr  error
	addRefCalls     int
	updateStateTo   []models.ProjectState
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: make(map[string]*models.Project)}
}

func (f *fakeStore) addProject(p *models.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID.String()] = p
}

func (f *fakeStore) addMoratorium(m *models.Moratorium) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moratoriums = append(f.moratoriums, m)
}

func (f *fakeStore) FindActiveNear(bbox models.BBox, excludeID string) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findNearErr != nil {
		return nil, f.findNearErr
	}

	var found []*models.Project
	for _, p := range f.projects {
		if p.ID.String() == excludeID || !p.State.IsActive() {
			continue
		}
		if bbox.Intersects(p.Geometry.BoundingBox()) {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return found, nil
}

func (f *fakeStore) FindOverlapping(bbox models.BBox, interval models.DateInterval) ([]*models.Moratorium, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findMoratErr != nil {
		return nil, f.findMoratErr
	}

	var found []*models.Moratorium
	for _, m := range f.moratoriums {
		if interval.Overlaps(m.Validity) && bbox.Intersects(m.Geometry.BoundingBox()) {
			found = append(found, m)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return found, nil
}

func (f *fakeStore) GetByID(id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) GetActiveIDs() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, p := range f.projects {
		if p.State.IsActive() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) UpdateState(id string, state models.ProjectState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateStateErr != nil {
		return f.updateStateErr
	}
	p, ok := f.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.State = state
	f.updateStateTo = append(f.updateStateTo, state)
	return nil
}

func (f *fakeStore) SetConflictFields(id string, hasConflict bool, conflictingIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setConflictErr != nil {
		return f.setConflictErr
	}
	p, ok := f.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.HasConflict = hasConflict
	p.ConflictingProjectIDs = conflictingIDs
	return nil
}

func (f *fakeStore) AddConflictRef(id, otherID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addRefCalls++
	if f.addRefErr != nil {
		return false, f.addRefErr
	}
	p, ok := f.projects[id]
	if !ok {
		return false, sql.ErrNoRows
	}
	for _, existing := range p.ConflictingProjectIDs {
		if existing == otherID {
			return false, nil
		}
	}
	p.ConflictingProjectIDs = append(p.ConflictingProjectIDs, otherID)
	p.HasConflict = true
	return true, nil
}

// fakePublisher records emitted events
type fakePublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (f *fakePublisher) Publish(event models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) byType(t models.EventType) []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Event
	for _, e := range f.events {
		if e.Type() == t {
			matched = append(matched, e)
		}
	}
	return matched
}

// failingDetector always fails with the given error
type failingDetector struct {
	err error
}

func (d *failingDetector) DetectConflicts(ctx context.Context, geometry models.Geometry, interval models.DateInterval, excludeProjectID string) (*models.ConflictDetectionResult, error) {
	return nil, d.err
}

// Wenceslas Square area, used as the shared test location
const (
	pragueLon = 14.4378
	pragueLat = 50.0755
)

// latShift converts a north offset in meters to degrees of latitude
func latShift(meters float64) float64 {
	return meters / 111194.9
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func mustInterval(start, end time.Time) models.DateInterval {
	return models.DateInterval{Start: start, End: end}
}

func testProject(name string, state models.ProjectState, geometry models.Geometry, interval models.DateInterval) *models.Project {
	p := models.NewProject(name, uuid.New(), geometry, interval)
	p.State = state
	return p
}

// newEngine wires the conflict engine over a fake store
func newEngine(store *fakeStore) (*ConflictDetectionService, *ConflictGraphService) {
	spatial := NewSpatialQueryService(store, store)
	return NewConflictDetectionService(spatial), NewConflictGraphService(store)
}
