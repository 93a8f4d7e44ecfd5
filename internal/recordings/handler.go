package recordings

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conferly/backend/internal/egress"
	"github.com/conferly/backend/internal/middleware"
	"github.com/conferly/backend/internal/models"
	"github.com/conferly/backend/internal/rooms"
	"github.com/conferly/backend/pkg/response"
	"github.com/conferly/backend/pkg/storage"
)

// Handler handles the caller-facing recording lifecycle endpoints.
type Handler struct {
	repo         *Repository
	roomRepo     *rooms.Repository
	registry     *egress.Registry
	s3           *storage.S3
	outputFolder string
	logger       *zap.Logger
}

// NewHandler creates a recordings handler.
func NewHandler(repo *Repository, roomRepo *rooms.Repository, registry *egress.Registry, s3 *storage.S3, outputFolder string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:         repo,
		roomRepo:     roomRepo,
		registry:     registry,
		s3:           s3,
		outputFolder: outputFolder,
		logger:       logger,
	}
}

type startRequest struct {
	Mode models.RecordingMode `json:"mode"`
}

// StartRecording handles POST /rooms/:id/recordings/start. Creates the
// INITIATED record (the storage constraint rejects a second live recording
// per room) and drives the worker through the mediator.
func (h *Handler) StartRecording(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}

	var body startRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if body.Mode == "" {
		body.Mode = models.RecordingModeScreenRecording
	}

	svc, err := h.registry.Resolve(body.Mode)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.roomRepo.GetByID(c.Request.Context(), roomID)
	if err != nil {
		h.logger.Error("room lookup failed", zap.Error(err), zap.String("room_id", roomID.String()))
		response.Internal(c, "failed to start recording")
		return
	}
	if room == nil {
		response.NotFound(c, "room not found")
		return
	}

	rec := &models.Recording{
		RoomID: roomID,
		Mode:   body.Mode,
		Status: models.RecordingStatusInitiated,
	}
	if err := h.repo.Create(c.Request.Context(), rec); err != nil {
		if errors.Is(err, ErrActiveRecordingExists) {
			response.Conflict(c, "a recording is already in progress for this room")
			return
		}
		h.logger.Error("create recording failed", zap.Error(err), zap.String("room_id", roomID.String()))
		response.Internal(c, "failed to start recording")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.GrantOwner(c.Request.Context(), rec.ID, userID); err != nil {
		h.logger.Error("grant owner access failed", zap.Error(err), zap.String("recording_id", rec.ID.String()))
	}

	mediator := egress.NewMediator(svc, h.repo, h.logger)
	if err := mediator.Start(c.Request.Context(), room, rec); err != nil {
		// Worker failure (FAILED_TO_START already persisted) or the status
		// change could not be saved.
		response.Internal(c, "failed to start recording")
		return
	}

	response.Created(c, gin.H{"recording": rec.ID, "status": rec.Status})
}

// StopRecording handles POST /recordings/:id/stop.
func (h *Handler) StopRecording(c *gin.Context) {
	recordingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid recording id")
		return
	}

	rec, err := h.repo.GetByID(c.Request.Context(), recordingID)
	if err != nil {
		h.logger.Error("recording lookup failed", zap.Error(err), zap.String("recording_id", recordingID.String()))
		response.Internal(c, "failed to stop recording")
		return
	}
	if rec == nil {
		response.NotFound(c, "recording not found")
		return
	}

	svc, err := h.registry.Resolve(rec.Mode)
	if err != nil {
		h.logger.Error("resolve worker service failed", zap.Error(err), zap.String("mode", string(rec.Mode)))
		response.Internal(c, "failed to stop recording")
		return
	}

	mediator := egress.NewMediator(svc, h.repo, h.logger)
	if err := mediator.Stop(c.Request.Context(), rec); err != nil {
		if !egress.IsLifecycleErr(err) {
			// Worker succeeded but the status change did not persist.
			h.logger.Error("stop recording failed", zap.Error(err), zap.String("recording_id", rec.ID.String()))
			response.Internal(c, "failed to stop recording")
			return
		}
		if rec.Status == models.RecordingStatusFailedToStop {
			// Worker failure; the terminal status is already persisted.
			response.Internal(c, "failed to stop recording")
			return
		}
		// Precondition violation, nothing was attempted or persisted.
		response.BadRequest(c, "recording is not active")
		return
	}

	response.OK(c, gin.H{"recording": rec.ID, "status": rec.Status})
}

// ListByRoom handles GET /rooms/:id/recordings.
func (h *Handler) ListByRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	list, err := h.repo.ListByRoom(c.Request.Context(), roomID)
	if err != nil {
		h.logger.Error("list recordings failed", zap.Error(err), zap.String("room_id", roomID.String()))
		response.Internal(c, "failed to list recordings")
		return
	}
	response.OK(c, list)
}

// GenerateDownloadURL handles GET /recordings/:id/download-url. Only
// finalized recordings have a durably stored artifact to presign.
func (h *Handler) GenerateDownloadURL(c *gin.Context) {
	recordingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid recording id")
		return
	}

	rec, err := h.repo.GetByID(c.Request.Context(), recordingID)
	if err != nil || rec == nil {
		response.NotFound(c, "recording not found")
		return
	}
	if rec.Status != models.RecordingStatusSaved && rec.Status != models.RecordingStatusNotificationSucceeded {
		response.BadRequest(c, "recording not ready for download")
		return
	}

	if h.s3 == nil {
		response.Internal(c, "object storage not configured")
		return
	}
	key := storage.RecordingKey(h.outputFolder, rec.ID.String(), rec.Mode)
	expire := h.s3.PresignExpire()
	url, err := h.s3.PresignDownload(c.Request.Context(), key, expire)
	if err != nil {
		h.logger.Error("presign recording download failed", zap.Error(err), zap.String("recording_id", recordingID.String()))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"download_url": url, "expires_in": int(expire.Seconds())})
}
