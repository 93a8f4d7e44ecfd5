package egress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conferly/backend/internal/models"
)

// Registry resolves a recording mode to a configured worker service. All
// services share one read-only Config computed at startup.
type Registry struct {
	cfg      *Config
	services map[models.RecordingMode]func(*Config) WorkerService
}

// NewRegistry builds a registry with the default mode mapping.
func NewRegistry(cfg *Config) *Registry {
	return &Registry{
		cfg: cfg,
		services: map[models.RecordingMode]func(*Config) WorkerService{
			models.RecordingModeScreenRecording: NewVideoCompositeService,
			models.RecordingModeTranscript:      NewAudioCompositeService,
		},
	}
}

// Register adds a worker service constructor for a mode. Registering a mode
// twice is a programming error.
func (r *Registry) Register(mode models.RecordingMode, ctor func(*Config) WorkerService) error {
	if _, exists := r.services[mode]; exists {
		return fmt.Errorf("worker service for mode %q is already registered", mode)
	}
	r.services[mode] = ctor
	return nil
}

// Resolve instantiates the worker service for the given mode.
func (r *Registry) Resolve(mode models.RecordingMode) (WorkerService, error) {
	ctor, ok := r.services[mode]
	if !ok {
		return nil, fmt.Errorf("unknown worker service for mode %q (registered modes: %s)", mode, strings.Join(r.modes(), ", "))
	}
	return ctor(r.cfg), nil
}

func (r *Registry) modes() []string {
	out := make([]string, 0, len(r.services))
	for m := range r.services {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}
