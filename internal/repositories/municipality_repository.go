package repositories

import (
	"database/sql"

	"github.com/jhruby/digplan/internal/models"
)

type MunicipalityRepository struct {
	db *sql.DB
}

func NewMunicipalityRepository(db *sql.DB) *MunicipalityRepository {
	return &MunicipalityRepository{
		db: db,
	}
}

// GetAll retrieves all registered municipalities
func (r *MunicipalityRepository) GetAll() ([]*models.Municipality, error) {
	query := `
		SELECT code, name, min_lon, min_lat, max_lon, max_lat
		FROM municipalities
		ORDER BY code
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var municipalities []*models.Municipality
	for rows.Next() {
		m := &models.Municipality{}
		err := rows.Scan(&m.Code, &m.Name, &m.MinLon, &m.MinLat, &m.MaxLon, &m.MaxLat)
		if err != nil {
			return nil, err
		}
		municipalities = append(municipalities, m)
	}

	return municipalities, rows.Err()
}

// Upsert inserts or replaces a municipality record
func (r *MunicipalityRepository) Upsert(m *models.Municipality) error {
	query := `
		INSERT INTO municipalities (code, name, min_lon, min_lat, max_lon, max_lat)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			min_lon = excluded.min_lon,
			min_lat = excluded.min_lat,
			max_lon = excluded.max_lon,
			max_lat = excluded.max_lat
	`

	_, err := r.db.Exec(query, m.Code, m.Name, m.MinLon, m.MinLat, m.MaxLon, m.MaxLat)
	return err
}
