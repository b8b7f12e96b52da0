package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fundflow-lending-core/internal/domain/outbox"
	"github.com/fundflow-lending-core/internal/domain/shared"
	"github.com/fundflow-lending-core/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the loan event topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher implements EventPublisher
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewKafkaEventPublisher creates a new publisher
func NewKafkaEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes one outbox message to Kafka and marks it PROCESSED.
// Messages are keyed by subject ID so events for the same loan or fund keep
// their order within a partition.
func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal audit event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Attempting to publish outbox message to loan event topic", "outbox_id", message.ID, "event_id", message.EventID)

	if err := p.producer.Publish(ctx, message.SubjectID.String(), event); err != nil {
		logger.Error("Failed to publish loan event to Kafka", "outbox_id", message.ID, "event_id", message.EventID, "error", err)
		return fmt.Errorf("failed to publish loan event %s: %w", message.EventID, err)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		return fmt.Errorf("publish for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	logger.Info("Outbox message successfully published and marked as PROCESSED", "outbox_id", message.ID, "event_id", message.EventID)
	return nil
}
