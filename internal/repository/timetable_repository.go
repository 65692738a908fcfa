package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/Likhith025/timetablegen/internal/models"
)

// TimetableRepository persists the append-only history of generation results.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned appends a generation result assigning the next version for
// the timetable.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	if version == nil {
		return fmt.Errorf("timetable version payload is nil")
	}
	if version.TimetableID == "" {
		return fmt.Errorf("timetable_id is required")
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if len(version.Result) == 0 {
		version.Result = types.JSONText(`{}`)
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions WHERE timetable_id = $1`
	if err := sqlx.GetContext(ctx, target, &version.Version, nextVersionQuery, version.TimetableID); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_versions (id, timetable_id, version, status, result, created_at)
VALUES (:id, :timetable_id, :version, :status, :result, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, version); err != nil {
		return fmt.Errorf("insert timetable version: %w", err)
	}
	return nil
}

// Latest returns the most recent version for the timetable.
func (r *TimetableRepository) Latest(ctx context.Context, timetableID string) (*models.TimetableVersion, error) {
	const query = `SELECT id, timetable_id, version, status, result, created_at
FROM timetable_versions WHERE timetable_id = $1 ORDER BY version DESC LIMIT 1`
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, timetableID); err != nil {
		return nil, err
	}
	return &version, nil
}

// History returns versions for the timetable, newest first.
func (r *TimetableRepository) History(ctx context.Context, timetableID string, limit int) ([]models.TimetableVersion, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, timetable_id, version, status, result, created_at
FROM timetable_versions WHERE timetable_id = $1 ORDER BY version DESC LIMIT $2`
	var versions []models.TimetableVersion
	if err := r.db.SelectContext(ctx, &versions, query, timetableID, limit); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	return versions, nil
}

// UpdateResult overwrites the stored result payload of one version. Used by
// the change-request approval path, which patches a single entry's time slot.
func (r *TimetableRepository) UpdateResult(ctx context.Context, exec sqlx.ExtContext, id string, result types.JSONText) error {
	const query = `UPDATE timetable_versions SET result = $1 WHERE id = $2`
	res, err := r.exec(exec).ExecContext(ctx, query, result, id)
	if err != nil {
		return fmt.Errorf("update timetable result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("timetable version %s not found", id)
	}
	return nil
}
