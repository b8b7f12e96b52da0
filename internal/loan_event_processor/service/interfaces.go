package service

import (
	"context"

	"github.com/fundflow-lending-core/internal/domain/audit"
)

// RecordingService defines the interface for recording loan audit events
// into the audit store.
type RecordingService interface {
	RecordEvent(ctx context.Context, event *audit.Event) error
}
