package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fundflow-lending-core/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the loan event collection in MongoDB
	AuditCollectionName = "loan_events"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new audit event after checking for duplicates.
// Returns ErrDuplicateEvent if an event with the same event ID exists, which
// makes consumer redelivery idempotent.
func (r *AuditRepository) Create(ctx context.Context, event *audit.Event) error {
	collection := r.db.Collection(AuditCollectionName)

	existingEvent, err := r.GetByEventID(ctx, event.EventID)
	if err != nil && !errors.Is(err, audit.ErrEventNotFound{}) {
		r.logger.Error("Failed to check for existing audit event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing audit event: %w", err)
	}

	if existingEvent != nil {
		return audit.ErrDuplicateEvent{EventID: event.EventID}
	}

	now := time.Now().UTC()
	event.RecordedAt = &now

	_, err = collection.InsertOne(ctx, event)
	if err != nil {
		r.logger.Error("Failed to create audit event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	return nil
}

// GetByEventID retrieves an audit event by its event ID.
// Returns ErrEventNotFound if no event exists with the given ID.
func (r *AuditRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*audit.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"event_id": eventID}
	var event audit.Event
	err := collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, audit.ErrEventNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get audit event",
			"event_id", eventID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit event: %w", err)
	}

	return &event, nil
}

// GetBySubjectID retrieves paginated audit events for a loan or fund contribution.
// Results are sorted by creation time in descending order (newest first).
func (r *AuditRepository) GetBySubjectID(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*audit.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"subject_id": subjectID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit events",
			"subject_id", subjectID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*audit.Event
	if err := cursor.All(ctx, &events); err != nil {
		r.logger.Error("Failed to decode audit events",
			"subject_id", subjectID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	return events, nil
}

// CountBySubjectID counts the total number of audit events for a subject
func (r *AuditRepository) CountBySubjectID(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"subject_id": subjectID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit events",
			"subject_id", subjectID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	return count, nil
}
