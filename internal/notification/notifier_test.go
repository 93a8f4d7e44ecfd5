package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/conferly/backend/config"
	"github.com/conferly/backend/internal/models"
)

type fakeOwnerLookup struct {
	owner *models.User
	err   error
}

func (f *fakeOwnerLookup) GetOwner(context.Context, uuid.UUID) (*models.User, error) {
	return f.owner, f.err
}

func transcriptRecording() *models.Recording {
	return &models.Recording{
		ID:     uuid.MustParse("46d1a121-2426-484d-8fb3-09b5d886f7a8"),
		Mode:   models.RecordingModeTranscript,
		Status: models.RecordingStatusStopped,
	}
}

func TestNotifyTranscript(t *testing.T) {
	owner := &models.User{Email: "host@example.com", Sub: "auth0|abc123"}

	t.Run("acknowledged", func(t *testing.T) {
		var gotAuth string
		var gotPayload summaryPayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &gotPayload))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		svc := NewService(config.SummaryConfig{
			Endpoint: server.URL,
			APIToken: "summary-token",
		}, "recordings", &fakeOwnerLookup{owner: owner}, nil)

		require.True(t, svc.Notify(context.Background(), transcriptRecording()))
		require.Equal(t, "Bearer summary-token", gotAuth)
		require.Equal(t, "recordings/46d1a121-2426-484d-8fb3-09b5d886f7a8.ogg", gotPayload.Filename)
		require.Equal(t, "host@example.com", gotPayload.Email)
		require.Equal(t, "auth0|abc123", gotPayload.Sub)
	})

	t.Run("non-2xx response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := NewService(config.SummaryConfig{
			Endpoint: server.URL,
			APIToken: "summary-token",
		}, "recordings", &fakeOwnerLookup{owner: owner}, nil)

		require.False(t, svc.Notify(context.Background(), transcriptRecording()))
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		svc := NewService(config.SummaryConfig{
			Endpoint: "http://127.0.0.1:1",
			APIToken: "summary-token",
		}, "recordings", &fakeOwnerLookup{owner: owner}, nil)

		require.False(t, svc.Notify(context.Background(), transcriptRecording()))
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewService(config.SummaryConfig{}, "recordings", &fakeOwnerLookup{owner: owner}, nil)
		require.False(t, svc.Notify(context.Background(), transcriptRecording()))
	})

	t.Run("no owner", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
		}))
		defer server.Close()

		svc := NewService(config.SummaryConfig{
			Endpoint: server.URL,
			APIToken: "summary-token",
		}, "recordings", &fakeOwnerLookup{err: errors.New("no rows")}, nil)

		require.False(t, svc.Notify(context.Background(), transcriptRecording()))
		require.False(t, called)
	})
}

func TestNotifyOtherModes(t *testing.T) {
	svc := NewService(config.SummaryConfig{
		Endpoint: "http://summary.internal",
		APIToken: "summary-token",
	}, "recordings", &fakeOwnerLookup{}, nil)

	t.Run("screen recording has no consumer", func(t *testing.T) {
		rec := transcriptRecording()
		rec.Mode = models.RecordingModeScreenRecording
		require.False(t, svc.Notify(context.Background(), rec))
	})

	t.Run("unknown mode", func(t *testing.T) {
		rec := transcriptRecording()
		rec.Mode = models.RecordingMode("podcast")
		require.False(t, svc.Notify(context.Background(), rec))
	})
}
