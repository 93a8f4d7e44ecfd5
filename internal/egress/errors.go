package egress

import "errors"

// Worker-transport errors, local to the worker services. The mediator
// translates them; they never reach its callers.
var (
	// ErrWorkerRequest marks a malformed or unsupported worker request.
	ErrWorkerRequest = errors.New("invalid worker request")
	// ErrWorkerConnection marks a transport failure reaching the provider.
	ErrWorkerConnection = errors.New("worker connection failed")
	// ErrWorkerResponse marks a provider reply missing expected fields.
	ErrWorkerResponse = errors.New("unexpected worker response")
)

// Lifecycle errors, the only ones mediator callers see. Catching one means a
// status change has already been persisted.
var (
	ErrRecordingStart = errors.New("could not start recording")
	ErrRecordingStop  = errors.New("could not stop recording")
)
