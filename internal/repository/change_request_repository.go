package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Likhith025/timetablegen/internal/models"
)

// ChangeRequestRepository persists slot change requests.
type ChangeRequestRepository struct {
	db *sqlx.DB
}

// NewChangeRequestRepository constructs repository.
func NewChangeRequestRepository(db *sqlx.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db}
}

// Create inserts a pending change request.
func (r *ChangeRequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	if request == nil {
		return fmt.Errorf("change request payload is nil")
	}
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.ChangeRequestStatusPending
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `
INSERT INTO change_requests (id, timetable_id, grade_section, day, current_slot, requested_slot, reason, status, decided_by, created_at, updated_at)
VALUES (:id, :timetable_id, :grade_section, :day, :current_slot, :requested_slot, :reason, :status, :decided_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, request); err != nil {
		return fmt.Errorf("insert change request: %w", err)
	}
	return nil
}

// FindByID loads one change request.
func (r *ChangeRequestRepository) FindByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	const query = `SELECT id, timetable_id, grade_section, day, current_slot, requested_slot, reason, status, decided_by, created_at, updated_at
FROM change_requests WHERE id = $1`
	var request models.ChangeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByTimetable returns requests for a timetable, newest first.
func (r *ChangeRequestRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.ChangeRequest, error) {
	const query = `SELECT id, timetable_id, grade_section, day, current_slot, requested_slot, reason, status, decided_by, created_at, updated_at
FROM change_requests WHERE timetable_id = $1 ORDER BY created_at DESC`
	var requests []models.ChangeRequest
	if err := r.db.SelectContext(ctx, &requests, query, timetableID); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus records the decision on a pending request.
func (r *ChangeRequestRepository) UpdateStatus(ctx context.Context, id string, status models.ChangeRequestStatus, decidedBy string) error {
	const query = `UPDATE change_requests SET status = $1, decided_by = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, status, decidedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update change request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("change request %s not found", id)
	}
	return nil
}
