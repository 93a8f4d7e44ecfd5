package storageevent

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conferly/backend/internal/models"
	"github.com/conferly/backend/pkg/response"
)

// Store is the recording persistence the finalize flow needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error)
	Update(ctx context.Context, rec *models.Recording) error
}

// Notifier announces a finalized recording downstream. Best-effort: the
// returned bool is the only signal.
type Notifier interface {
	Notify(ctx context.Context, rec *models.Recording) bool
}

// Handler ingests storage-provider webhook calls and finalizes the matching
// recording. Webhooks are delivered at least once and are unordered relative
// to stop requests; the savability check makes re-application a rejected
// no-op.
type Handler struct {
	parser   *Parser
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a storage-event handler.
func NewHandler(parser *Parser, store Store, notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{parser: parser, store: store, notifier: notifier, logger: logger}
}

// Finalize transitions a recording to its terminal success state: the
// notification outcome picks NOTIFICATION_SUCCEEDED over SAVED, and the
// record is persisted unconditionally.
func (h *Handler) Finalize(ctx context.Context, recordingID uuid.UUID) (*models.Recording, error) {
	rec, err := h.store.GetByID(ctx, recordingID)
	if err != nil {
		// Transient store failure, not a missing record. Surfaced as 500 so
		// the provider redelivers the event.
		return nil, fmt.Errorf("load recording: %w", err)
	}
	if rec == nil {
		h.logger.Error("recording not found", zap.String("recording_id", recordingID.String()))
		return nil, fmt.Errorf("%w: %s", ErrRecordingNotFound, recordingID)
	}

	if !rec.IsSavable() {
		h.logger.Error("recording cannot be saved",
			zap.String("recording_id", recordingID.String()),
			zap.String("status", string(rec.Status)))
		return nil, fmt.Errorf("%w: recording %s is in status %s", ErrRecordingUpdate, recordingID, rec.Status)
	}

	if h.notifier.Notify(ctx, rec) {
		rec.Status = models.RecordingStatusNotificationSucceeded
	} else {
		rec.Status = models.RecordingStatusSaved
	}

	if err := h.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist recording: %w", err)
	}

	h.logger.Info("recording finalized",
		zap.String("recording_id", recordingID.String()),
		zap.String("status", string(rec.Status)))
	return rec, nil
}

// HandleStorageEvent handles POST /recordings/storage-event.
// 200: processed, or intentionally ignored (content type not a recording).
// 403: malformed payload, wrong bucket, or a non-savable recording.
// 404: no recording matches the identifier; retries will not help.
func (h *Handler) HandleStorageEvent(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		response.Forbidden(c, "could not read event data")
		return
	}

	recordingID, err := h.parser.RecordingID(data)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFileType):
			h.logger.Info("ignored storage event for non-recording object", zap.Error(err))
			response.OK(c, gin.H{"ignored": true})
		default:
			h.logger.Error("could not handle storage event", zap.Error(err))
			response.Forbidden(c, "invalid event data")
		}
		return
	}

	rec, err := h.Finalize(c.Request.Context(), recordingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordingNotFound):
			response.NotFound(c, "recording not found")
		case errors.Is(err, ErrRecordingUpdate):
			response.Forbidden(c, "recording cannot be updated")
		default:
			h.logger.Error("finalize recording", zap.Error(err), zap.String("recording_id", recordingID.String()))
			response.Internal(c, "failed to update recording")
		}
		return
	}

	response.OK(c, gin.H{"recording_id": rec.ID, "status": rec.Status})
}
