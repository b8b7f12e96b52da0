package payment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferencePrefix starts every auto-generated payment reference
const ReferencePrefix = "PAY-"

// ErrPaymentNotFound indicates missing payment
type ErrPaymentNotFound struct {
	PaymentID uuid.UUID
}

func (e ErrPaymentNotFound) Error() string {
	return "payment not found: " + e.PaymentID.String()
}

// Is matches any ErrPaymentNotFound when the target carries a nil ID
func (e ErrPaymentNotFound) Is(target error) bool {
	t, ok := target.(ErrPaymentNotFound)
	if !ok {
		return false
	}
	return t.PaymentID == uuid.Nil || e.PaymentID == t.PaymentID
}

// ErrDuplicateReference indicates a reference number uniqueness violation
type ErrDuplicateReference struct {
	ReferenceNumber string
}

func (e ErrDuplicateReference) Error() string {
	return "payment with reference number already exists: " + e.ReferenceNumber
}

// Is matches any ErrDuplicateReference when the target carries an empty reference
func (e ErrDuplicateReference) Is(target error) bool {
	t, ok := target.(ErrDuplicateReference)
	if !ok {
		return false
	}
	return t.ReferenceNumber == "" || e.ReferenceNumber == t.ReferenceNumber
}

// Payment is an immutable record of an applied loan payment
type Payment struct {
	ID              uuid.UUID       `json:"id"`
	LoanID          uuid.UUID       `json:"loan_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number"`
}

// New creates a payment record. The reference number must already be set;
// use NewReferenceNumber when the caller did not supply one.
func New(loanID uuid.UUID, amount decimal.Decimal, referenceNumber string) *Payment {
	return &Payment{
		ID:              uuid.New(),
		LoanID:          loanID,
		Amount:          amount,
		PaymentDate:     time.Now(),
		ReferenceNumber: referenceNumber,
	}
}

// NewReferenceNumber generates a reference of the form "PAY-" followed by
// 8 uppercase hexadecimal characters. The random source is deliberately not
// cryptographic: uniqueness is a convenience enforced by the database, not a
// security property.
func NewReferenceNumber() string {
	return fmt.Sprintf("%s%08X", ReferencePrefix, rand.Uint32())
}
