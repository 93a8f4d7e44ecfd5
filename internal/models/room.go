package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room is the session entity a recording belongs to. Room CRUD lives in an
// external service; only the fields the recording subsystem reads are here.
type Room struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkerName returns the room identifier the egress provider knows the
// session by: the room UUID without hyphens.
func (r *Room) WorkerName() string {
	return strings.ReplaceAll(r.ID.String(), "-", "")
}
