package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the collaborator identity entity; managed by an external service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Sub       string    `json:"sub"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessRole is the role a user holds on a recording.
type AccessRole string

const (
	RoleOwner         AccessRole = "owner"
	RoleAdministrator AccessRole = "administrator"
)

// RecordingAccess links a user to a recording with a role.
type RecordingAccess struct {
	ID          uuid.UUID  `json:"id"`
	RecordingID uuid.UUID  `json:"recording_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Role        AccessRole `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
}
