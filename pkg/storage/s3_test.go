package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conferly/backend/internal/models"
)

func TestRecordingKey(t *testing.T) {
	require.Equal(t, "recordings/46d1a121-2426-484d-8fb3-09b5d886f7a8.mp4",
		RecordingKey("recordings", "46d1a121-2426-484d-8fb3-09b5d886f7a8", models.RecordingModeScreenRecording))
	require.Equal(t, "recordings/46d1a121-2426-484d-8fb3-09b5d886f7a8.ogg",
		RecordingKey("recordings", "46d1a121-2426-484d-8fb3-09b5d886f7a8", models.RecordingModeTranscript))
	// no folder configured
	require.Equal(t, "46d1a121-2426-484d-8fb3-09b5d886f7a8.mp4",
		RecordingKey("", "46d1a121-2426-484d-8fb3-09b5d886f7a8", models.RecordingModeScreenRecording))
}
