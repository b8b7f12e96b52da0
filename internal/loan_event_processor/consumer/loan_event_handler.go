package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fundflow-lending-core/internal/domain/audit"
	"github.com/fundflow-lending-core/internal/loan_event_processor/service"
	"github.com/fundflow-lending-core/internal/platform/messaging/producers"
)

// LoanEventHandler handles incoming loan event messages from Kafka
type LoanEventHandler struct {
	recordingService service.RecordingService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewLoanEventHandler creates a new handler
func NewLoanEventHandler(
	logger *slog.Logger,
	recordingService service.RecordingService,
	producer producers.DeadLetterPublisher,
) *LoanEventHandler {
	return &LoanEventHandler{
		recordingService: recordingService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes Kafka messages
func (h *LoanEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event audit.Event
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal loan event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received loan event for recording",
		"event_id", event.EventID.String(),
		"type", string(event.Type),
		"subject_id", event.SubjectID.String(),
		"amount", event.Amount,
	)

	if err := h.recordingService.RecordEvent(ctx, &event); err != nil {
		logger.Error("Failed to record loan event",
			"event_id", event.EventID.String(),
			"subject_id", event.SubjectID.String(),
			"error", err,
		)
		return fmt.Errorf("recording loan event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully recorded loan event", "event_id", event.EventID.String())
	return nil // Success, commit offset
}
