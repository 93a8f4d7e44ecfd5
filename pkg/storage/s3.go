package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/conferly/backend/config"
	"github.com/conferly/backend/internal/models"
)

// S3 provides read access to recorded artifacts: pre-signed download URLs and
// deterministic object keys. The egress worker writes the objects itself; this
// side only ever reads.
type S3 struct {
	client *s3.Client
	cfg    config.BucketConfig
	logger *zap.Logger
}

// NewS3 creates an S3 client from the bucket configuration. A non-empty
// endpoint switches to an S3-compatible store (e.g. MinIO) with path-style
// addressing.
func NewS3(ctx context.Context, cfg config.BucketConfig, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	logger.Info("S3 client ready", zap.String("bucket", cfg.Name), zap.String("region", cfg.Region))
	return &S3{client: client, cfg: cfg, logger: logger}, nil
}

// RecordingKey returns the object key the egress worker writes for a
// recording: {output_folder}/{recording_id}.{ext}. Derived from the recording
// id only, never from caller-supplied strings.
func RecordingKey(outputFolder string, recordingID string, mode models.RecordingMode) string {
	ext := "mp4"
	if mode == models.RecordingModeTranscript {
		ext = "ogg"
	}
	return path.Join(outputFolder, recordingID+"."+ext)
}

// Bucket returns the configured recordings bucket name.
func (s *S3) Bucket() string { return s.cfg.Name }

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// PresignDownload returns a pre-signed GET URL for a recorded artifact.
func (s *S3) PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Name),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// HeadObject returns object metadata if the artifact exists.
func (s *S3) HeadObject(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Name),
		Key:    aws.String(key),
	})
}
