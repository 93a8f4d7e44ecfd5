package egress

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conferly/backend/internal/models"
)

// RecordingStore persists recording state changes.
type RecordingStore interface {
	Update(ctx context.Context, rec *models.Recording) error
}

// Mediator keeps a recording's persisted status and worker id consistent with
// the outcome of worker service calls, and translates worker errors into the
// two lifecycle errors callers see. The record pointer is mutated in place, so
// after a lifecycle error the caller holds the already-persisted state. A
// non-lifecycle error means the worker call went through but the status
// change could not be saved.
type Mediator struct {
	svc    WorkerService
	store  RecordingStore
	logger *zap.Logger
}

// NewMediator creates a mediator for one worker service.
func NewMediator(svc WorkerService, store RecordingStore, logger *zap.Logger) *Mediator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mediator{svc: svc, store: store, logger: logger}
}

// Start starts the recording through the worker service. On success the
// recording transitions INITIATED -> ACTIVE with the worker id set; on worker
// failure it transitions to FAILED_TO_START. The precondition is checked
// before any network call, and the record is persisted on every worker-path
// exit.
func (m *Mediator) Start(ctx context.Context, room *models.Room, rec *models.Recording) (err error) {
	if rec.Status != models.RecordingStatusInitiated {
		m.logger.Error("cannot start recording",
			zap.String("recording_id", rec.ID.String()),
			zap.String("status", string(rec.Status)))
		return fmt.Errorf("%w: recording is in status %s", ErrRecordingStart, rec.Status)
	}

	defer func() {
		if perr := m.persist(ctx, rec); perr != nil && err == nil {
			err = perr
		}
	}()

	workerID, err := m.svc.Start(ctx, room.WorkerName(), rec.ID)
	if err != nil {
		rec.Status = models.RecordingStatusFailedToStart
		m.logger.Error("failed to start recording",
			zap.Error(err),
			zap.String("room", room.Slug),
			zap.String("recording_id", rec.ID.String()))
		return fmt.Errorf("%w: %v", ErrRecordingStart, err)
	}

	rec.WorkerID = workerID
	rec.Status = models.RecordingStatusActive
	m.logger.Info("worker started",
		zap.String("room", room.Slug),
		zap.String("worker_id", workerID))
	return nil
}

// Stop stops the recording through the worker service. On success the status
// follows the worker's outcome (STOPPED or ABORTED); on worker failure it
// transitions to FAILED_TO_STOP. As with Start, persistence is unconditional
// once the precondition passes.
func (m *Mediator) Stop(ctx context.Context, rec *models.Recording) (err error) {
	if rec.Status != models.RecordingStatusActive {
		m.logger.Error("cannot stop recording",
			zap.String("recording_id", rec.ID.String()),
			zap.String("status", string(rec.Status)))
		return fmt.Errorf("%w: recording is in status %s", ErrRecordingStop, rec.Status)
	}

	defer func() {
		if perr := m.persist(ctx, rec); perr != nil && err == nil {
			err = perr
		}
	}()

	outcome, err := m.svc.Stop(ctx, rec.WorkerID)
	if err != nil {
		rec.Status = models.RecordingStatusFailedToStop
		m.logger.Error("failed to stop recording",
			zap.Error(err),
			zap.String("recording_id", rec.ID.String()))
		return fmt.Errorf("%w: %v", ErrRecordingStop, err)
	}

	if outcome == OutcomeAborted {
		rec.Status = models.RecordingStatusAborted
	} else {
		rec.Status = models.RecordingStatusStopped
	}
	m.logger.Info("worker stopped",
		zap.String("recording_id", rec.ID.String()),
		zap.String("outcome", string(outcome)))
	return nil
}

// persist writes the record back regardless of how the worker call went, so
// the store never silently diverges from what was attempted. When the worker
// call already failed, the persist error is logged but the worker error wins;
// when the worker call succeeded, a persist failure must surface, since the
// store still holds the pre-call status.
func (m *Mediator) persist(ctx context.Context, rec *models.Recording) error {
	if err := m.store.Update(ctx, rec); err != nil {
		m.logger.Error("persist recording state",
			zap.Error(err),
			zap.String("recording_id", rec.ID.String()),
			zap.String("status", string(rec.Status)))
		return fmt.Errorf("persist recording state: %w", err)
	}
	return nil
}

// IsLifecycleErr reports whether err is one of the mediator's caller-facing
// errors.
func IsLifecycleErr(err error) bool {
	return errors.Is(err, ErrRecordingStart) || errors.Is(err, ErrRecordingStop)
}
