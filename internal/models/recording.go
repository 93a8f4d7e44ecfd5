package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordingStatus is the lifecycle state of a recording attempt.
type RecordingStatus string

const (
	RecordingStatusInitiated             RecordingStatus = "initiated"
	RecordingStatusActive                RecordingStatus = "active"
	RecordingStatusStopped               RecordingStatus = "stopped"
	RecordingStatusSaved                 RecordingStatus = "saved"
	RecordingStatusAborted               RecordingStatus = "aborted"
	RecordingStatusFailedToStart         RecordingStatus = "failed_to_start"
	RecordingStatusFailedToStop          RecordingStatus = "failed_to_stop"
	RecordingStatusNotificationSucceeded RecordingStatus = "notification_succeeded"
)

// RecordingMode selects the capture mode of the egress worker.
type RecordingMode string

const (
	RecordingModeScreenRecording RecordingMode = "screen_recording"
	RecordingModeTranscript      RecordingMode = "transcript"
)

// Recording is one capture attempt for a room, kept consistent with the
// external egress worker by the lifecycle mediator and the storage-event
// finalize handler.
type Recording struct {
	ID        uuid.UUID       `json:"id"`
	RoomID    uuid.UUID       `json:"room_id"`
	Mode      RecordingMode   `json:"mode"`
	Status    RecordingStatus `json:"status"`
	WorkerID  string          `json:"worker_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsFinal reports whether the status is terminal.
func (s RecordingStatus) IsFinal() bool {
	switch s {
	case RecordingStatusStopped, RecordingStatusSaved, RecordingStatusAborted,
		RecordingStatusFailedToStart, RecordingStatusFailedToStop,
		RecordingStatusNotificationSucceeded:
		return true
	}
	return false
}

// IsUnsuccessful reports whether the recording ended without a usable artifact.
func (s RecordingStatus) IsUnsuccessful() bool {
	switch s {
	case RecordingStatusAborted, RecordingStatusFailedToStart, RecordingStatusFailedToStop:
		return true
	}
	return false
}

// IsSavable reports whether a storage event may finalize this recording.
// Unsuccessful recordings never produced an artifact, and an already saved
// one must not be double-applied on webhook redelivery.
func (r *Recording) IsSavable() bool {
	return !r.Status.IsUnsuccessful() && r.Status != RecordingStatusSaved &&
		r.Status != RecordingStatusNotificationSucceeded
}
