package storageevent

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Event carries the fields consumed from a storage notification.
type Event struct {
	BucketName  string
	ObjectKey   string
	ContentType string
}

// Object keys look like "(<folder>%2F)*<uuid>.<ext>"; the folder prefix is
// optional and may be nested with percent-encoded separators. The UUID must be
// canonical: 36 characters, hyphens in place.
var objectKeyPattern = regexp.MustCompile(
	`^(?:[^%]+%2F)*([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})\.[a-zA-Z0-9]+$`,
)

// Parser extracts and validates a recording identifier from raw storage-event
// payloads shaped like S3 bucket notifications.
type Parser struct {
	bucketName   string
	allowedTypes map[string]bool
}

// NewParser creates a parser bound to one bucket and a content-type
// allow-list. An empty list falls back to audio/ogg and video/mp4.
func NewParser(bucketName string, allowedContentTypes []string) *Parser {
	if len(allowedContentTypes) == 0 {
		allowedContentTypes = []string{"audio/ogg", "video/mp4"}
	}
	allowed := make(map[string]bool, len(allowedContentTypes))
	for _, t := range allowedContentTypes {
		allowed[t] = true
	}
	return &Parser{bucketName: bucketName, allowedTypes: allowed}
}

type rawPayload struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key         string `json:"key"`
				ContentType string `json:"contentType"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// Parse defensively extracts the event fields from the first record of the
// payload, naming the offending field on failure.
func (p *Parser) Parse(data []byte) (Event, error) {
	if len(data) == 0 {
		return Event{}, fmt.Errorf("%w: received empty data", ErrParsingEventData)
	}
	var payload rawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrParsingEventData, err)
	}
	if len(payload.Records) == 0 {
		return Event{}, fmt.Errorf("%w: missing field Records", ErrParsingEventData)
	}
	s3 := payload.Records[0].S3
	if s3.Bucket.Name == "" {
		return Event{}, fmt.Errorf("%w: missing field s3.bucket.name", ErrParsingEventData)
	}
	if s3.Object.Key == "" {
		return Event{}, fmt.Errorf("%w: missing field s3.object.key", ErrParsingEventData)
	}
	if s3.Object.ContentType == "" {
		return Event{}, fmt.Errorf("%w: missing field s3.object.contentType", ErrParsingEventData)
	}
	return Event{
		BucketName:  s3.Bucket.Name,
		ObjectKey:   s3.Object.Key,
		ContentType: s3.Object.ContentType,
	}, nil
}

// Validate checks the event against configuration and returns the recording
// identifier carried in the object key.
func (p *Parser) Validate(event Event) (uuid.UUID, error) {
	if event.BucketName != p.bucketName {
		return uuid.Nil, fmt.Errorf("%w: expected %q, got %q", ErrInvalidBucket, p.bucketName, event.BucketName)
	}
	if !p.allowedTypes[event.ContentType] {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidFileType, event.ContentType)
	}
	match := objectKeyPattern.FindStringSubmatch(event.ObjectKey)
	if match == nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidFilepath, event.ObjectKey)
	}
	recordingID, err := uuid.Parse(match[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidFilepath, event.ObjectKey)
	}
	return recordingID, nil
}

// RecordingID parses and validates a raw payload in one step.
func (p *Parser) RecordingID(data []byte) (uuid.UUID, error) {
	event, err := p.Parse(data)
	if err != nil {
		return uuid.Nil, err
	}
	return p.Validate(event)
}
