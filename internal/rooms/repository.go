package rooms

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferly/backend/internal/models"
)

// Repository reads room rows. Room CRUD belongs to an external service; the
// recording subsystem only ever looks rooms up.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a rooms repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a room by ID, or nil when no row matches.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	const q = `SELECT id, slug, created_at FROM rooms WHERE id = $1`
	var room models.Room
	err := r.pool.QueryRow(ctx, q, id).Scan(&room.ID, &room.Slug, &room.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}
