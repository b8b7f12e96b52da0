package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidTerm           = errors.New("term must be at least one month")
	ErrNegativeRate          = errors.New("interest rate must not be negative")
	ErrPaymentExceedsBalance = errors.New("payment exceeds remaining loan balance")
)

// ErrLoanNotFound indicates missing loan
type ErrLoanNotFound struct {
	LoanID uuid.UUID
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + e.LoanID.String()
}

// Is matches any ErrLoanNotFound when the target carries a nil ID
func (e ErrLoanNotFound) Is(target error) bool {
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	return t.LoanID == uuid.Nil || e.LoanID == t.LoanID
}

// ErrNotLoanOwner indicates a caller acting on somebody else's loan
type ErrNotLoanOwner struct {
	LoanID   uuid.UUID
	CallerID uuid.UUID
}

func (e ErrNotLoanOwner) Error() string {
	return "caller " + e.CallerID.String() + " does not own loan " + e.LoanID.String()
}

// Is matches any ErrNotLoanOwner when the target carries nil IDs
func (e ErrNotLoanOwner) Is(target error) bool {
	t, ok := target.(ErrNotLoanOwner)
	if !ok {
		return false
	}
	return t.LoanID == uuid.Nil || (e.LoanID == t.LoanID && e.CallerID == t.CallerID)
}

// ErrCapacityExceeded indicates that approving the loan would push total
// approved principal above total approved fund capital.
type ErrCapacityExceeded struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e ErrCapacityExceeded) Error() string {
	return "approving this loan exceeds available funds: requested " +
		e.Requested.StringFixed(2) + ", available " + e.Available.StringFixed(2)
}

// Is matches any ErrCapacityExceeded regardless of amounts
func (e ErrCapacityExceeded) Is(target error) bool {
	_, ok := target.(ErrCapacityExceeded)
	return ok
}

// ErrAlreadyDecided indicates an approval attempt on a non-pending loan
type ErrAlreadyDecided struct {
	LoanID uuid.UUID
	Status shared.Status
}

func (e ErrAlreadyDecided) Error() string {
	return "loan " + e.LoanID.String() + " already decided: " + string(e.Status)
}

// Is matches any ErrAlreadyDecided when the target carries a nil ID
func (e ErrAlreadyDecided) Is(target error) bool {
	t, ok := target.(ErrAlreadyDecided)
	if !ok {
		return false
	}
	return t.LoanID == uuid.Nil || e.LoanID == t.LoanID
}

// ErrPrincipalOutOfBounds indicates a requested principal outside the
// configured amount bounds.
type ErrPrincipalOutOfBounds struct {
	Principal decimal.Decimal
	Min       decimal.Decimal
	Max       decimal.Decimal
}

func (e ErrPrincipalOutOfBounds) Error() string {
	return "loan amount " + e.Principal.StringFixed(2) + " is outside the allowed range [" +
		e.Min.StringFixed(2) + ", " + e.Max.StringFixed(2) + "]"
}

// Is matches any ErrPrincipalOutOfBounds regardless of amounts
func (e ErrPrincipalOutOfBounds) Is(target error) bool {
	_, ok := target.(ErrPrincipalOutOfBounds)
	return ok
}

// Loan represents a customer loan with its materialized payment schedule
type Loan struct {
	ID                  uuid.UUID       `json:"id"`
	CustomerID          uuid.UUID       `json:"customer_id"`
	Principal           decimal.Decimal `json:"principal"`
	TermMonths          int             `json:"term_months"`
	InterestRatePercent decimal.Decimal `json:"interest_rate_percent"`
	StartDate           *time.Time      `json:"start_date,omitempty"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	RemainingBalance    decimal.Decimal `json:"remaining_balance"`
	Status              shared.Status   `json:"status"`
	Schedule            []Installment   `json:"payment_schedule,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// NewLoan creates a pending loan. The remaining balance starts at the
// principal; interest is carried by the schedule.
func NewLoan(customerID uuid.UUID, principal decimal.Decimal, interestRatePercent decimal.Decimal, termMonths int, startDate *time.Time) (*Loan, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if termMonths <= 0 {
		return nil, ErrInvalidTerm
	}
	if interestRatePercent.IsNegative() {
		return nil, ErrNegativeRate
	}

	now := time.Now()
	return &Loan{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		Principal:           principal,
		TermMonths:          termMonths,
		InterestRatePercent: interestRatePercent,
		StartDate:           startDate,
		RemainingBalance:    principal,
		Status:              shared.StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// ApplyPayment reduces the remaining balance by amount. The loan transitions
// to REPAID once the balance reaches zero. Rejected payments leave the loan
// untouched.
func (l *Loan) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(l.RemainingBalance) {
		return ErrPaymentExceedsBalance
	}

	l.RemainingBalance = l.RemainingBalance.Sub(amount)
	if l.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		l.Status = shared.StatusRepaid
	}
	l.UpdatedAt = time.Now()
	return nil
}

// Approve transitions PENDING -> APPROVED. The capacity check lives in the
// approval service; this only guards the state machine.
func (l *Loan) Approve() error {
	if l.Status.Decided() {
		return ErrAlreadyDecided{LoanID: l.ID, Status: l.Status}
	}
	l.Status = shared.StatusApproved
	l.UpdatedAt = time.Now()
	return nil
}

// Reject transitions PENDING -> REJECTED
func (l *Loan) Reject() error {
	if l.Status.Decided() {
		return ErrAlreadyDecided{LoanID: l.ID, Status: l.Status}
	}
	l.Status = shared.StatusRejected
	l.UpdatedAt = time.Now()
	return nil
}

// Repaid reports whether the loan has been fully paid off
func (l *Loan) Repaid() bool {
	return l.Status == shared.StatusRepaid
}
