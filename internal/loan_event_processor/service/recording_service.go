package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fundflow-lending-core/internal/domain/audit"
)

// ErrMissingEventID indicates an event without an identity; such events can
// never be recorded idempotently.
var ErrMissingEventID = errors.New("audit event has no event ID")

// RecordingServiceImpl implements the RecordingService interface
type RecordingServiceImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

// NewRecordingService creates a new audit recording service
func NewRecordingService(logger *slog.Logger, auditRepo audit.Repository) RecordingService {
	return &RecordingServiceImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// RecordEvent writes the event into the audit store. Duplicate event IDs mean
// the event was already recorded; they are acknowledged, not retried.
func (s *RecordingServiceImpl) RecordEvent(ctx context.Context, event *audit.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if event.EventID == uuid.Nil {
		return ErrMissingEventID
	}

	if err := s.auditRepo.Create(ctx, event); err != nil {
		if errors.Is(err, audit.ErrDuplicateEvent{}) {
			logger.Info("Audit event already recorded, skipping",
				"event_id", event.EventID.String(),
				"type", string(event.Type),
			)
			return nil
		}
		return fmt.Errorf("failed to record audit event %s: %w", event.EventID.String(), err)
	}

	logger.Info("Audit event recorded",
		"event_id", event.EventID.String(),
		"type", string(event.Type),
		"subject_id", event.SubjectID.String(),
	)
	return nil
}
