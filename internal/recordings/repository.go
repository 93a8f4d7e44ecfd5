package recordings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferly/backend/internal/models"
)

// ErrActiveRecordingExists is returned when the one-live-recording-per-room
// constraint rejects an insert. Concurrent starts race at the storage layer;
// the loser gets this as a normal, recoverable conflict.
var ErrActiveRecordingExists = errors.New("an active recording already exists for this room")

// Repository handles recording persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a recordings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new recording in INITIATED status.
func (r *Repository) Create(ctx context.Context, rec *models.Recording) error {
	const q = `INSERT INTO recordings (id, room_id, mode, status)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, rec.RoomID, rec.Mode, rec.Status).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrActiveRecordingExists
		}
		return err
	}
	return nil
}

// GetByID returns a recording by ID, or nil when no row matches.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	const q = `SELECT id, room_id, mode, status, COALESCE(worker_id,''), created_at, updated_at
		FROM recordings WHERE id = $1`
	var rec models.Recording
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&rec.ID, &rec.RoomID, &rec.Mode, &rec.Status, &rec.WorkerID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListByRoom returns all recordings for a room, newest first.
func (r *Repository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Recording, error) {
	const q = `SELECT id, room_id, mode, status, COALESCE(worker_id,''), created_at, updated_at
		FROM recordings WHERE room_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Recording
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.Mode, &rec.Status, &rec.WorkerID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Update persists the mutable fields of a recording.
func (r *Repository) Update(ctx context.Context, rec *models.Recording) error {
	const q = `UPDATE recordings SET status = $1, worker_id = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, rec.Status, rec.WorkerID, rec.ID).Scan(&rec.UpdatedAt)
}

// GrantOwner records the starting user as the recording's owner.
func (r *Repository) GrantOwner(ctx context.Context, recordingID, userID uuid.UUID) error {
	const q = `INSERT INTO recording_accesses (recording_id, user_id, role)
		VALUES ($1, $2, $3) ON CONFLICT (recording_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, recordingID, userID, models.RoleOwner)
	return err
}

// GetOwner returns the user holding the owner role on a recording, or nil
// when no owner access exists.
func (r *Repository) GetOwner(ctx context.Context, recordingID uuid.UUID) (*models.User, error) {
	const q = `SELECT u.id, u.email, u.sub, u.created_at
		FROM recording_accesses a
		JOIN users u ON u.id = a.user_id
		WHERE a.recording_id = $1 AND a.role = $2
		LIMIT 1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, recordingID, models.RoleOwner).
		Scan(&u.ID, &u.Email, &u.Sub, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
