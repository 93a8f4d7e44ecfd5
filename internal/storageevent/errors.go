package storageevent

import "errors"

// Parsing and validation errors, local to this package. The webhook handler
// maps them to HTTP outcomes; none propagate as 5xx.
var (
	// ErrParsingEventData marks malformed, incomplete or missing event data.
	ErrParsingEventData = errors.New("malformed storage event data")
	// ErrInvalidBucket marks an event for a bucket other than the configured one.
	ErrInvalidBucket = errors.New("invalid bucket")
	// ErrInvalidFileType marks an unsupported content type. This is an
	// "ignore" signal, not a security violation; buckets may host unrelated
	// objects.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrInvalidFilepath marks an object key that does not carry a recording id.
	ErrInvalidFilepath = errors.New("invalid filepath")
)

// Finalize errors, surfaced to the webhook handler as 404/403.
var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrRecordingUpdate   = errors.New("recording cannot be updated")
)
