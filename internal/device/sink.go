package device

import (
	"context"
	"time"

	"github.com/nerrad567/andon-core/internal/event"
)

// sinkTimeout bounds each registry update so a wedged database cannot
// stall the persistence worker indefinitely.
const sinkTimeout = 5 * time.Second

// Logger is the logging interface the sink needs.
type Logger interface {
	Error(msg string, args ...any)
}

// RegistrySink updates the device registry after each persisted event.
// It satisfies the ingest worker's sink interface; failures are logged
// and swallowed because the registry is advisory, never load-bearing.
type RegistrySink struct {
	registry *Registry
	logger   Logger
}

// NewRegistrySink creates a sink updating registry.
func NewRegistrySink(registry *Registry, logger Logger) *RegistrySink {
	return &RegistrySink{
		registry: registry,
		logger:   logger,
	}
}

// RecordEvent bumps the device's registry entry.
func (s *RegistrySink) RecordEvent(deviceName string, _ event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.registry.Touch(ctx, deviceName); err != nil {
		s.logger.Error("registry update failed", "device", deviceName, "error", err)
	}
}
