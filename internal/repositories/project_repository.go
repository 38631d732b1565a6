package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

const projectColumns = `id, name, applicant_id, geometry, start_date, end_date, state,
		has_conflict, conflicting_project_ids, affected_municipalities,
		created_at, updated_at, deleted_at`

// Create creates a new project
func (r *ProjectRepository) Create(project *models.Project) error {
	geometry, err := json.Marshal(project.Geometry)
	if err != nil {
		return err
	}
	bbox := project.Geometry.BoundingBox()

	query := `
		INSERT INTO projects (id, name, applicant_id, geometry, min_lon, min_lat, max_lon, max_lat,
			start_date, end_date, state, has_conflict, conflicting_project_ids, affected_municipalities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		project.ID.String(),
		project.Name,
		project.ApplicantID.String(),
		string(geometry),
		bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat,
		project.Interval.Start,
		project.Interval.End,
		project.State,
		project.HasConflict,
		marshalIDs(project.ConflictingProjectIDs),
		marshalIDs(project.AffectedMunicipalities),
	)

	return err
}

// GetByID retrieves a project by ID (excluding soft deleted)
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = ? AND deleted_at IS NULL
	`

	return scanProject(r.db.QueryRow(query, id))
}

// GetByApplicantID retrieves all projects for an applicant (excluding soft deleted)
func (r *ProjectRepository) GetByApplicantID(applicantID string) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE applicant_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

// Update updates a project's mutable fields and its derived
// municipalities. Conflict fields are written only through
// SetConflictFields and AddConflictRef.
func (r *ProjectRepository) Update(project *models.Project) error {
	geometry, err := json.Marshal(project.Geometry)
	if err != nil {
		return err
	}
	bbox := project.Geometry.BoundingBox()

	query := `
		UPDATE projects
		SET name = ?, geometry = ?, min_lon = ?, min_lat = ?, max_lon = ?, max_lat = ?,
			start_date = ?, end_date = ?, affected_municipalities = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		project.Name,
		string(geometry),
		bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat,
		project.Interval.Start,
		project.Interval.End,
		marshalIDs(project.AffectedMunicipalities),
		project.ID.String(),
	)

	if err != nil {
		return err
	}

	return requireRow(result)
}

// UpdateState persists a workflow state change
func (r *ProjectRepository) UpdateState(id string, state models.ProjectState) error {
	query := `
		UPDATE projects
		SET state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, state, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// Delete performs a hard delete of a project. Callers must ensure the
// project is still a draft; anything past draft is cancelled instead.
func (r *ProjectRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// FindActiveNear returns candidate projects in active states whose
// bounding box overlaps the given box, most recent first. Exact
// distance filtering is done by the caller.
func (r *ProjectRepository) FindActiveNear(bbox models.BBox, excludeID string) ([]*models.Project, error) {
	states := activeStatePlaceholders()

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE state IN (` + states + `)
		  AND deleted_at IS NULL
		  AND min_lon <= ? AND max_lon >= ?
		  AND min_lat <= ? AND max_lat >= ?
		  AND id != ?
		ORDER BY created_at DESC
	`

	args := make([]interface{}, 0, len(models.ActiveStates)+5)
	for _, s := range models.ActiveStates {
		args = append(args, s)
	}
	args = append(args, bbox.MaxLon, bbox.MinLon, bbox.MaxLat, bbox.MinLat, excludeID)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

// GetActiveIDs returns the ids of all projects in active states
func (r *ProjectRepository) GetActiveIDs() ([]string, error) {
	states := activeStatePlaceholders()

	query := `
		SELECT id FROM projects
		WHERE state IN (` + states + `) AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	args := make([]interface{}, 0, len(models.ActiveStates))
	for _, s := range models.ActiveStates {
		args = append(args, s)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetConflicted returns all non-deleted projects currently flagged as
// conflicting, most recent first
func (r *ProjectRepository) GetConflicted() ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE has_conflict = 1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

// SetConflictFields rewrites a project's derived conflict fields
func (r *ProjectRepository) SetConflictFields(id string, hasConflict bool, conflictingIDs []string) error {
	query := `
		UPDATE projects
		SET has_conflict = ?, conflicting_project_ids = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, hasConflict, marshalIDs(conflictingIDs), id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// AddConflictRef appends otherID to the project's conflict set and
// raises the flag, inside one transaction so the read-modify-write is
// serialized by the store's write lock. Returns false when the id was
// already present (idempotent, never duplicates).
func (r *ProjectRepository) AddConflictRef(id, otherID string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRow(`SELECT conflicting_project_ids FROM projects WHERE id = ? AND deleted_at IS NULL`, id).Scan(&raw)
	if err != nil {
		return false, err
	}

	ids, err := unmarshalIDs(raw)
	if err != nil {
		return false, err
	}

	for _, existing := range ids {
		if existing == otherID {
			return false, nil
		}
	}

	ids = append(ids, otherID)

	_, err = tx.Exec(`
		UPDATE projects
		SET has_conflict = 1, conflicting_project_ids = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, marshalIDs(ids), id)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func activeStatePlaceholders() string {
	return strings.TrimSuffix(strings.Repeat("?, ", len(models.ActiveStates)), ", ")
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func marshalIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

func unmarshalIDs(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("corrupt id list: %w", err)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var (
		id, applicantID, geometry, conflictingIDs, municipalities string
		startDate, endDate                                        time.Time
	)

	err := row.Scan(
		&id,
		&project.Name,
		&applicantID,
		&geometry,
		&startDate,
		&endDate,
		&project.State,
		&project.HasConflict,
		&conflictingIDs,
		&municipalities,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if project.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if project.ApplicantID, err = uuid.Parse(applicantID); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(geometry), &project.Geometry); err != nil {
		return nil, err
	}
	if project.ConflictingProjectIDs, err = unmarshalIDs(conflictingIDs); err != nil {
		return nil, err
	}
	if project.AffectedMunicipalities, err = unmarshalIDs(municipalities); err != nil {
		return nil, err
	}
	project.Interval = models.DateInterval{Start: startDate, End: endDate}

	return project, nil
}

func scanProjects(rows *sql.Rows) ([]*models.Project, error) {
	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}
