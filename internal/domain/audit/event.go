package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

// Event is one immutable entry of the loan event audit trail. Monetary
// amounts are carried as fixed-point decimal strings so the BSON and JSON
// encodings stay exact.
type Event struct {
	EventID          uuid.UUID            `json:"event_id" bson:"event_id"`
	Type             shared.LoanEventType `json:"type" bson:"type"`
	SubjectID        uuid.UUID            `json:"subject_id" bson:"subject_id"` // loan or fund contribution ID
	ActorID          uuid.UUID            `json:"actor_id" bson:"actor_id"`
	Amount           string               `json:"amount" bson:"amount"`
	RemainingBalance string               `json:"remaining_balance,omitempty" bson:"remaining_balance,omitempty"`
	ReferenceNumber  string               `json:"reference_number,omitempty" bson:"reference_number,omitempty"`
	CorrelationID    string               `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at" bson:"created_at"`
	RecordedAt       *time.Time           `json:"recorded_at,omitempty" bson:"recorded_at,omitempty"`
}

// NewEvent creates an audit event for a subject (loan or fund contribution)
func NewEvent(eventType shared.LoanEventType, subjectID, actorID uuid.UUID, amount decimal.Decimal, correlationID string) *Event {
	return &Event{
		EventID:       uuid.New(),
		Type:          eventType,
		SubjectID:     subjectID,
		ActorID:       actorID,
		Amount:        amount.StringFixed(2),
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
	}
}

// WithPayment attaches payment details to the event
func (e *Event) WithPayment(remainingBalance decimal.Decimal, referenceNumber string) *Event {
	e.RemainingBalance = remainingBalance.StringFixed(2)
	e.ReferenceNumber = referenceNumber
	return e
}
