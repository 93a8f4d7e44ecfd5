package egress

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/livekit/protocol/livekit"
	"github.com/stretchr/testify/require"

	"github.com/conferly/backend/config"
	"github.com/conferly/backend/internal/models"
)

type fakeClient struct {
	startCalls int
	stopCalls  int
	lastStart  *livekit.RoomCompositeEgressRequest
	lastStop   *livekit.StopEgressRequest
	startFn    func(req *livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error)
	stopFn     func(req *livekit.StopEgressRequest) (*livekit.EgressInfo, error)
}

func (f *fakeClient) StartRoomCompositeEgress(_ context.Context, req *livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error) {
	f.startCalls++
	f.lastStart = req
	return f.startFn(req)
}

func (f *fakeClient) StopEgress(_ context.Context, req *livekit.StopEgressRequest) (*livekit.EgressInfo, error) {
	f.stopCalls++
	f.lastStop = req
	return f.stopFn(req)
}

func testConfig(client Client) *Config {
	return &Config{
		OutputFolder: "recordings",
		Bucket: config.BucketConfig{
			Endpoint:        "http://minio:9000",
			AccessKeyID:     "minio",
			SecretAccessKey: "minio123",
			Region:          "us-east-1",
			Name:            "media",
			ForcePathStyle:  true,
		},
		Client: client,
	}
}

func TestVideoCompositeServiceStart(t *testing.T) {
	client := &fakeClient{
		startFn: func(*livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error) {
			return &livekit.EgressInfo{EgressId: "EG_abc"}, nil
		},
	}
	svc := NewVideoCompositeService(testConfig(client))
	recordingID := uuid.MustParse("46d1a121-2426-484d-8fb3-09b5d886f7a8")

	workerID, err := svc.Start(context.Background(), "roomname", recordingID)
	require.NoError(t, err)
	require.Equal(t, "EG_abc", workerID)

	req := client.lastStart
	require.Equal(t, "roomname", req.RoomName)
	require.False(t, req.AudioOnly)
	require.Len(t, req.FileOutputs, 1)
	require.Equal(t, livekit.EncodedFileType_MP4, req.FileOutputs[0].FileType)
	require.Equal(t, "recordings/46d1a121-2426-484d-8fb3-09b5d886f7a8.mp4", req.FileOutputs[0].Filepath)

	s3 := req.FileOutputs[0].GetS3()
	require.NotNil(t, s3)
	require.Equal(t, "media", s3.Bucket)
	require.True(t, s3.ForcePathStyle)
}

func TestAudioCompositeServiceStart(t *testing.T) {
	client := &fakeClient{
		startFn: func(*livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error) {
			return &livekit.EgressInfo{EgressId: "EG_audio"}, nil
		},
	}
	svc := NewAudioCompositeService(testConfig(client))
	recordingID := uuid.MustParse("46d1a121-2426-484d-8fb3-09b5d886f7a8")

	workerID, err := svc.Start(context.Background(), "roomname", recordingID)
	require.NoError(t, err)
	require.Equal(t, "EG_audio", workerID)

	req := client.lastStart
	require.True(t, req.AudioOnly)
	require.Equal(t, livekit.EncodedFileType_OGG, req.FileOutputs[0].FileType)
	require.Equal(t, "recordings/46d1a121-2426-484d-8fb3-09b5d886f7a8.ogg", req.FileOutputs[0].Filepath)
}

func TestStartErrors(t *testing.T) {
	t.Run("missing room name rejected locally", func(t *testing.T) {
		client := &fakeClient{
			startFn: func(*livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error) {
				return &livekit.EgressInfo{EgressId: "EG_abc"}, nil
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		_, err := svc.Start(context.Background(), "", uuid.New())
		require.ErrorIs(t, err, ErrWorkerRequest)
		require.Equal(t, 0, client.startCalls)
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &fakeClient{
			startFn: func(*livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		_, err := svc.Start(context.Background(), "roomname", uuid.New())
		require.ErrorIs(t, err, ErrWorkerConnection)
	})

	t.Run("missing egress id in response", func(t *testing.T) {
		client := &fakeClient{
			startFn: func(*livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error) {
				return &livekit.EgressInfo{}, nil
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		_, err := svc.Start(context.Background(), "roomname", uuid.New())
		require.ErrorIs(t, err, ErrWorkerResponse)
	})
}

func TestStop(t *testing.T) {
	t.Run("stopped", func(t *testing.T) {
		client := &fakeClient{
			stopFn: func(*livekit.StopEgressRequest) (*livekit.EgressInfo, error) {
				return &livekit.EgressInfo{Status: livekit.EgressStatus_EGRESS_ENDING}, nil
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		outcome, err := svc.Stop(context.Background(), "EG_abc")
		require.NoError(t, err)
		require.Equal(t, OutcomeStopped, outcome)
		require.Equal(t, "EG_abc", client.lastStop.EgressId)
	})

	t.Run("aborted", func(t *testing.T) {
		client := &fakeClient{
			stopFn: func(*livekit.StopEgressRequest) (*livekit.EgressInfo, error) {
				return &livekit.EgressInfo{Status: livekit.EgressStatus_EGRESS_ABORTED}, nil
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		outcome, err := svc.Stop(context.Background(), "EG_abc")
		require.NoError(t, err)
		require.Equal(t, OutcomeAborted, outcome)
	})

	t.Run("missing worker id rejected locally", func(t *testing.T) {
		client := &fakeClient{
			stopFn: func(*livekit.StopEgressRequest) (*livekit.EgressInfo, error) {
				return &livekit.EgressInfo{}, nil
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		_, err := svc.Stop(context.Background(), "")
		require.ErrorIs(t, err, ErrWorkerRequest)
		require.Equal(t, 0, client.stopCalls)
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &fakeClient{
			stopFn: func(*livekit.StopEgressRequest) (*livekit.EgressInfo, error) {
				return nil, errors.New("timeout")
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		_, err := svc.Stop(context.Background(), "EG_abc")
		require.ErrorIs(t, err, ErrWorkerConnection)
	})

	t.Run("nil response", func(t *testing.T) {
		client := &fakeClient{
			stopFn: func(*livekit.StopEgressRequest) (*livekit.EgressInfo, error) {
				return nil, nil
			},
		}
		svc := NewVideoCompositeService(testConfig(client))

		_, err := svc.Stop(context.Background(), "EG_abc")
		require.ErrorIs(t, err, ErrWorkerResponse)
	})
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(testConfig(&fakeClient{}))

	t.Run("resolves default modes", func(t *testing.T) {
		svc, err := reg.Resolve(models.RecordingModeScreenRecording)
		require.NoError(t, err)
		require.Equal(t, "video-recording-composite-livekit-egress", svc.HRID())

		svc, err = reg.Resolve(models.RecordingModeTranscript)
		require.NoError(t, err)
		require.Equal(t, "audio-recording-composite-livekit-egress", svc.HRID())
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := reg.Resolve(models.RecordingMode("podcast"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "podcast")
		require.Contains(t, err.Error(), string(models.RecordingModeScreenRecording))
	})

	t.Run("duplicate registration", func(t *testing.T) {
		err := reg.Register(models.RecordingModeTranscript, NewAudioCompositeService)
		require.Error(t, err)
	})

	t.Run("custom registration", func(t *testing.T) {
		custom := models.RecordingMode("audio-only")
		require.NoError(t, reg.Register(custom, NewAudioCompositeService))
		svc, err := reg.Resolve(custom)
		require.NoError(t, err)
		require.Equal(t, "audio-recording-composite-livekit-egress", svc.HRID())
	})
}
