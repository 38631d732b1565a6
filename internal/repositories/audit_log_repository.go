package repositories

import (
	"database/sql"

	"github.com/jhruby/digplan/internal/models"
)

// AuditLogRepository is an append-only store of workflow transitions
type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{
		db: db,
	}
}

// Create appends an audit entry
func (r *AuditLogRepository) Create(entry *models.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (id, project_id, old_state, new_state, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		entry.ID,
		entry.ProjectID,
		entry.OldState,
		entry.NewState,
		entry.ActorID,
		entry.CreatedAt,
	)

	return err
}

// GetByProjectID retrieves the transition history of a project
func (r *AuditLogRepository) GetByProjectID(projectID string) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT id, project_id, old_state, new_state, actor_id, created_at
		FROM audit_log
		WHERE project_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		entry := &models.AuditLogEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.OldState,
			&entry.NewState,
			&entry.ActorID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
