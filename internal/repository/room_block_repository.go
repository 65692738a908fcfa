package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Likhith025/timetablegen/internal/models"
)

// RoomBlockRepository persists room reservation records.
type RoomBlockRepository struct {
	db *sqlx.DB
}

// NewRoomBlockRepository constructs repository.
func NewRoomBlockRepository(db *sqlx.DB) *RoomBlockRepository {
	return &RoomBlockRepository{db: db}
}

// Create inserts a block record.
func (r *RoomBlockRepository) Create(ctx context.Context, block *models.RoomBlock) error {
	if block == nil {
		return fmt.Errorf("room block payload is nil")
	}
	if block.RoomID == "" || block.Date == "" || block.TimeSlot == "" {
		return fmt.Errorf("room_id, date and time_slot are required")
	}
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO room_blocks (id, room_id, block_date, time_slot, purpose, blocked_by, created_at)
VALUES (:id, :room_id, :block_date, :time_slot, :purpose, :blocked_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, block); err != nil {
		return fmt.Errorf("insert room block: %w", err)
	}
	return nil
}

// ListByDate returns blocks for one calendar date.
func (r *RoomBlockRepository) ListByDate(ctx context.Context, date string) ([]models.RoomBlock, error) {
	const query = `SELECT id, room_id, block_date, time_slot, purpose, blocked_by, created_at
FROM room_blocks WHERE block_date = $1 ORDER BY time_slot, room_id`
	var blocks []models.RoomBlock
	if err := r.db.SelectContext(ctx, &blocks, query, date); err != nil {
		return nil, fmt.Errorf("list room blocks: %w", err)
	}
	return blocks, nil
}

// Delete removes a block record.
func (r *RoomBlockRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM room_blocks WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete room block: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("room block %s not found", id)
	}
	return nil
}
