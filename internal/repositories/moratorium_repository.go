package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/models"
)

type MoratoriumRepository struct {
	db *sql.DB
}

func NewMoratoriumRepository(db *sql.DB) *MoratoriumRepository {
	return &MoratoriumRepository{
		db: db,
	}
}

const moratoriumColumns = `id, municipality_code, created_by, geometry, valid_from, valid_to,
		reason, exceptions, created_at`

// Create creates a new moratorium
func (r *MoratoriumRepository) Create(moratorium *models.Moratorium) error {
	geometry, err := json.Marshal(moratorium.Geometry)
	if err != nil {
		return err
	}
	bbox := moratorium.Geometry.BoundingBox()

	query := `
		INSERT INTO moratoriums (id, municipality_code, created_by, geometry,
			min_lon, min_lat, max_lon, max_lat, valid_from, valid_to, reason, exceptions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		moratorium.ID.String(),
		moratorium.MunicipalityCode,
		moratorium.CreatedBy.String(),
		string(geometry),
		bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat,
		moratorium.Validity.Start,
		moratorium.Validity.End,
		moratorium.Reason,
		moratorium.Exceptions,
	)

	return err
}

// GetByID retrieves a moratorium by ID
func (r *MoratoriumRepository) GetByID(id string) (*models.Moratorium, error) {
	query := `
		SELECT ` + moratoriumColumns + `
		FROM moratoriums
		WHERE id = ?
	`

	return scanMoratorium(r.db.QueryRow(query, id))
}

// GetByMunicipality retrieves all moratoriums owned by a municipality
func (r *MoratoriumRepository) GetByMunicipality(code string) ([]*models.Moratorium, error) {
	query := `
		SELECT ` + moratoriumColumns + `
		FROM moratoriums
		WHERE municipality_code = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMoratoriums(rows)
}

// FindOverlapping returns candidate moratoriums whose validity
// intersects the interval and whose bounding box overlaps the given
// box, most recent first. Exact geometry intersection is done by the
// caller.
func (r *MoratoriumRepository) FindOverlapping(bbox models.BBox, interval models.DateInterval) ([]*models.Moratorium, error) {
	query := `
		SELECT ` + moratoriumColumns + `
		FROM moratoriums
		WHERE valid_from <= ? AND valid_to >= ?
		  AND min_lon <= ? AND max_lon >= ?
		  AND min_lat <= ? AND max_lat >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query,
		interval.End, interval.Start,
		bbox.MaxLon, bbox.MinLon, bbox.MaxLat, bbox.MinLat,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMoratoriums(rows)
}

// Delete removes a moratorium
func (r *MoratoriumRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM moratoriums WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func scanMoratorium(row rowScanner) (*models.Moratorium, error) {
	moratorium := &models.Moratorium{}
	var (
		id, createdBy, geometry string
		validFrom, validTo      time.Time
	)

	err := row.Scan(
		&id,
		&moratorium.MunicipalityCode,
		&createdBy,
		&geometry,
		&validFrom,
		&validTo,
		&moratorium.Reason,
		&moratorium.Exceptions,
		&moratorium.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if moratorium.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if moratorium.CreatedBy, err = uuid.Parse(createdBy); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(geometry), &moratorium.Geometry); err != nil {
		return nil, err
	}
	moratorium.Validity = models.DateInterval{Start: validFrom, End: validTo}

	return moratorium, nil
}

func scanMoratoriums(rows *sql.Rows) ([]*models.Moratorium, error) {
	var moratoriums []*models.Moratorium
	for rows.Next() {
		moratorium, err := scanMoratorium(rows)
		if err != nil {
			return nil, err
		}
		moratoriums = append(moratoriums, moratorium)
	}
	return moratoriums, rows.Err()
}
