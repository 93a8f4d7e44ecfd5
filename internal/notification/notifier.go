package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conferly/backend/config"
	"github.com/conferly/backend/internal/models"
	"github.com/conferly/backend/pkg/storage"
)

// OwnerLookup resolves the user owning a recording.
type OwnerLookup interface {
	GetOwner(ctx context.Context, recordingID uuid.UUID) (*models.User, error)
}

// Service notifies external consumers once a recording is finalized. All
// failures degrade to a logged false: the artifact is already durably stored,
// so losing a notification must never block or roll back the finalize
// transition.
type Service struct {
	cfg          config.SummaryConfig
	outputFolder string
	owners       OwnerLookup
	client       *http.Client
	logger       *zap.Logger
}

// NewService creates a notification service with a bounded request timeout.
func NewService(cfg config.SummaryConfig, outputFolder string, owners OwnerLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		cfg:          cfg,
		outputFolder: outputFolder,
		owners:       owners,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Notify dispatches on the recording mode. Returns whether a downstream
// consumer acknowledged the notification; never returns an error.
func (s *Service) Notify(ctx context.Context, rec *models.Recording) bool {
	switch rec.Mode {
	case models.RecordingModeTranscript:
		return s.notifySummaryService(ctx, rec)
	case models.RecordingModeScreenRecording:
		s.logger.Warn("screen recording mode has no downstream consumer",
			zap.String("recording_id", rec.ID.String()))
		return false
	default:
		s.logger.Error("unknown recording mode",
			zap.String("mode", string(rec.Mode)),
			zap.String("recording_id", rec.ID.String()))
		return false
	}
}

type summaryPayload struct {
	Filename string `json:"filename"`
	Email    string `json:"email"`
	Sub      string `json:"sub"`
}

func (s *Service) notifySummaryService(ctx context.Context, rec *models.Recording) bool {
	if s.cfg.Endpoint == "" || s.cfg.APIToken == "" {
		s.logger.Error("summary service not configured")
		return false
	}

	owner, err := s.owners.GetOwner(ctx, rec.ID)
	if err != nil || owner == nil {
		s.logger.Error("no owner found for recording",
			zap.Error(err),
			zap.String("recording_id", rec.ID.String()))
		return false
	}

	payload := summaryPayload{
		Filename: storage.RecordingKey(s.outputFolder, rec.ID.String(), rec.Mode),
		Email:    owner.Email,
		Sub:      owner.Sub,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal summary payload", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("create summary request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIToken)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("summary service request failed",
			zap.Error(err),
			zap.String("recording_id", rec.ID.String()))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("summary service returned non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.String("recording_id", rec.ID.String()))
		return false
	}
	return true
}
