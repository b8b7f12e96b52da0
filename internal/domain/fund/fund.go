package fund

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

// MinContribution is the smallest capital contribution accepted
var MinContribution = decimal.NewFromInt(1000)

// ErrFundNotFound indicates missing fund contribution
type ErrFundNotFound struct {
	FundID uuid.UUID
}

func (e ErrFundNotFound) Error() string {
	return "fund contribution not found: " + e.FundID.String()
}

// Is matches any ErrFundNotFound when the target carries a nil ID
func (e ErrFundNotFound) Is(target error) bool {
	t, ok := target.(ErrFundNotFound)
	if !ok {
		return false
	}
	return t.FundID == uuid.Nil || e.FundID == t.FundID
}

// ErrAmountBelowMinimum indicates a contribution under the floor
type ErrAmountBelowMinimum struct {
	Amount decimal.Decimal
}

func (e ErrAmountBelowMinimum) Error() string {
	return "contribution amount " + e.Amount.StringFixed(2) + " is below the minimum of " + MinContribution.StringFixed(2)
}

// Is matches any ErrAmountBelowMinimum regardless of amount
func (e ErrAmountBelowMinimum) Is(target error) bool {
	_, ok := target.(ErrAmountBelowMinimum)
	return ok
}

// ErrAlreadyDecided indicates a decision attempt on a non-pending contribution
type ErrAlreadyDecided struct {
	FundID uuid.UUID
	Status shared.Status
}

func (e ErrAlreadyDecided) Error() string {
	return "fund contribution " + e.FundID.String() + " already decided: " + string(e.Status)
}

// Is matches any ErrAlreadyDecided when the target carries a nil ID
func (e ErrAlreadyDecided) Is(target error) bool {
	t, ok := target.(ErrAlreadyDecided)
	if !ok {
		return false
	}
	return t.FundID == uuid.Nil || e.FundID == t.FundID
}

// Contribution represents capital contributed by a provider. Approved
// contributions form the lendable capacity aggregated by the fund ledger.
type Contribution struct {
	ID         uuid.UUID       `json:"id"`
	ProviderID uuid.UUID       `json:"provider_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     shared.Status   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewContribution creates a pending contribution
func NewContribution(providerID uuid.UUID, amount decimal.Decimal) (*Contribution, error) {
	if amount.LessThan(MinContribution) {
		return nil, ErrAmountBelowMinimum{Amount: amount}
	}

	now := time.Now()
	return &Contribution{
		ID:         uuid.New(),
		ProviderID: providerID,
		Amount:     amount,
		Status:     shared.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Approve transitions PENDING -> APPROVED. Fund approval is the source of
// lending capacity and is never constrained by it.
func (c *Contribution) Approve() error {
	if c.Status.Decided() {
		return ErrAlreadyDecided{FundID: c.ID, Status: c.Status}
	}
	c.Status = shared.StatusApproved
	c.UpdatedAt = time.Now()
	return nil
}

// Reject transitions PENDING -> REJECTED
func (c *Contribution) Reject() error {
	if c.Status.Decided() {
		return ErrAlreadyDecided{FundID: c.ID, Status: c.Status}
	}
	c.Status = shared.StatusRejected
	c.UpdatedAt = time.Now()
	return nil
}
