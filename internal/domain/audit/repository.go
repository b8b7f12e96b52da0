package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages audit event persistence with pagination support
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Event, error)
	GetBySubjectID(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Event, error)
	CountBySubjectID(ctx context.Context, subjectID uuid.UUID) (int64, error)
}

// ErrEventNotFound indicates missing audit event
type ErrEventNotFound struct {
	EventID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "audit event not found: " + e.EventID.String()
}

// Is matches any ErrEventNotFound when the target carries a nil ID
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || e.EventID == t.EventID
}

// ErrDuplicateEvent indicates event uniqueness violation
type ErrDuplicateEvent struct {
	EventID uuid.UUID
}

func (e ErrDuplicateEvent) Error() string {
	return "duplicate audit event: " + e.EventID.String()
}

// Is matches any ErrDuplicateEvent when the target carries a nil ID
func (e ErrDuplicateEvent) Is(target error) bool {
	t, ok := target.(ErrDuplicateEvent)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || e.EventID == t.EventID
}
