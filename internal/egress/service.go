package egress

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/livekit/protocol/livekit"
	"go.uber.org/zap"

	"github.com/conferly/backend/config"
)

// StopOutcome is the provider-reported result of stopping a worker.
type StopOutcome string

const (
	OutcomeStopped StopOutcome = "STOPPED"
	OutcomeAborted StopOutcome = "ABORTED"
)

// Config is the shared, read-only configuration every worker service is
// constructed with. Built once at startup and injected through the registry.
type Config struct {
	OutputFolder string
	Bucket       config.BucketConfig
	Client       Client
	Logger       *zap.Logger
}

// WorkerService starts and stops capture against the external egress provider
// for one recording mode.
type WorkerService interface {
	// HRID is a human-readable identifier for the service implementation.
	HRID() string
	// Start initiates capture and returns the provider's worker id.
	Start(ctx context.Context, roomName string, recordingID uuid.UUID) (string, error)
	// Stop requests termination of an ongoing worker.
	Stop(ctx context.Context, workerID string) (StopOutcome, error)
}

// baseService carries the request plumbing shared by all egress types.
type baseService struct {
	cfg *Config
}

// filepath derives the artifact object key from the recording id only, never
// from caller-supplied strings.
func (b *baseService) filepath(recordingID uuid.UUID, extension string) string {
	return fmt.Sprintf("%s/%s.%s", b.cfg.OutputFolder, recordingID, extension)
}

func (b *baseService) s3Upload() *livekit.S3Upload {
	return &livekit.S3Upload{
		Endpoint:       b.cfg.Bucket.Endpoint,
		AccessKey:      b.cfg.Bucket.AccessKeyID,
		Secret:         b.cfg.Bucket.SecretAccessKey,
		Region:         b.cfg.Bucket.Region,
		Bucket:         b.cfg.Bucket.Name,
		ForcePathStyle: b.cfg.Bucket.ForcePathStyle,
	}
}

func (b *baseService) startComposite(ctx context.Context, roomName, filepath string, fileType livekit.EncodedFileType, audioOnly bool) (string, error) {
	if roomName == "" {
		return "", fmt.Errorf("%w: missing room name", ErrWorkerRequest)
	}
	req := &livekit.RoomCompositeEgressRequest{
		RoomName:  roomName,
		AudioOnly: audioOnly,
		FileOutputs: []*livekit.EncodedFileOutput{{
			FileType: fileType,
			Filepath: filepath,
			Output:   &livekit.EncodedFileOutput_S3{S3: b.s3Upload()},
		}},
	}
	info, err := b.cfg.Client.StartRoomCompositeEgress(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: start room composite egress: %v", ErrWorkerConnection, err)
	}
	if info.GetEgressId() == "" {
		return "", fmt.Errorf("%w: egress id missing from response", ErrWorkerResponse)
	}
	return info.GetEgressId(), nil
}

// Stop requests termination of an ongoing egress worker. The stop request is
// shared among all egress types, so a single implementation suffices.
func (b *baseService) Stop(ctx context.Context, workerID string) (StopOutcome, error) {
	if workerID == "" {
		return "", fmt.Errorf("%w: missing worker id", ErrWorkerRequest)
	}
	info, err := b.cfg.Client.StopEgress(ctx, &livekit.StopEgressRequest{EgressId: workerID})
	if err != nil {
		return "", fmt.Errorf("%w: stop egress: %v", ErrWorkerConnection, err)
	}
	if info == nil {
		return "", fmt.Errorf("%w: recording status missing from response", ErrWorkerResponse)
	}
	// Only ABORTED is surfaced distinctly; all other provider statuses mean
	// the worker is winding down normally. Provider enum values stay inside
	// this package.
	if info.GetStatus() == livekit.EgressStatus_EGRESS_ABORTED {
		return OutcomeAborted, nil
	}
	return OutcomeStopped, nil
}

// VideoCompositeService records all participant video and audio tracks into a
// single '.mp4' artifact.
type VideoCompositeService struct {
	baseService
}

// NewVideoCompositeService builds the video composite worker service.
func NewVideoCompositeService(cfg *Config) WorkerService {
	return &VideoCompositeService{baseService{cfg: cfg}}
}

func (s *VideoCompositeService) HRID() string { return "video-recording-composite-livekit-egress" }

// Start begins the video composite egress for a recording.
func (s *VideoCompositeService) Start(ctx context.Context, roomName string, recordingID uuid.UUID) (string, error) {
	return s.startComposite(ctx, roomName, s.filepath(recordingID, "mp4"), livekit.EncodedFileType_MP4, false)
}

// AudioCompositeService records all participant audio tracks into a single
// '.ogg' artifact.
type AudioCompositeService struct {
	baseService
}

// NewAudioCompositeService builds the audio-only composite worker service.
func NewAudioCompositeService(cfg *Config) WorkerService {
	return &AudioCompositeService{baseService{cfg: cfg}}
}

func (s *AudioCompositeService) HRID() string { return "audio-recording-composite-livekit-egress" }

// Start begins the audio-only composite egress for a recording.
func (s *AudioCompositeService) Start(ctx context.Context, roomName string, recordingID uuid.UUID) (string, error) {
	return s.startComposite(ctx, roomName, s.filepath(recordingID, "ogg"), livekit.EncodedFileType_OGG, true)
}
