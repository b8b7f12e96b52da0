package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// TxRunner abstracts transactional execution on the Postgres pool so services
// can be tested without a live database.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	ExecuteTxWithOptions(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error
}

// ScheduleCache caches materialized repayment schedules. All methods are
// best-effort; a failed cache never fails the request.
type ScheduleCache interface {
	Get(ctx context.Context, loanID uuid.UUID) ([]loan.Installment, bool)
	Set(ctx context.Context, loanID uuid.UUID, schedule []loan.Installment)
	Invalidate(ctx context.Context, loanID uuid.UUID)
	InvalidateAll(ctx context.Context)
}

// InstallmentEstimate is the result of the loan calculator
type InstallmentEstimate struct {
	Installment   decimal.Decimal
	TotalPayment  decimal.Decimal
	TotalInterest decimal.Decimal

	// SophisticatedInstallment is the frequency-aware figure computed with the
	// active rate configuration; nil when no configuration exists.
	SophisticatedInstallment *decimal.Decimal
}

// LoanService defines the interface for loan origination and retrieval
type LoanService interface {
	// ApplyForLoan creates a pending loan for the customer. The interest rate
	// always comes from the active rate configuration; termMonths <= 0 falls
	// back to the configured duration.
	// Returns ErrConfigMissing when no configuration exists and
	// ErrPrincipalOutOfBounds when the principal violates the configured bounds.
	ApplyForLoan(ctx context.Context, customerID uuid.UUID, principal decimal.Decimal, termMonths int) (*loan.Loan, error)

	// GetLoan retrieves a loan visible to the caller: reviewers see any loan,
	// everyone else only their own.
	GetLoan(ctx context.Context, id, callerID uuid.UUID, role shared.Role) (*loan.Loan, error)

	// ListLoans lists loans: all of them for reviewers, the caller's own for
	// customers, an empty list for anybody else.
	ListLoans(ctx context.Context, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*loan.Loan, error)

	// GetSchedule returns the loan's repayment schedule, recomputing it from
	// the loan's stored terms and persisting the fresh snapshot.
	// Returns ErrConfigMissing when no rate configuration exists.
	GetSchedule(ctx context.Context, loanID, callerID uuid.UUID, role shared.Role) ([]loan.Installment, error)

	// ListPayments retrieves the paginated payment history of a loan.
	// Returns payments, total count, and any error.
	ListPayments(ctx context.Context, loanID, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*payment.Payment, int64, error)

	// EstimateInstallment runs the loan calculator for arbitrary terms
	EstimateInstallment(ctx context.Context, principal, annualRatePercent decimal.Decimal, termMonths int) (*InstallmentEstimate, error)
}

// FundService defines the interface for fund contribution operations
type FundService interface {
	// Contribute records a pending capital contribution.
	// Returns ErrAmountBelowMinimum for amounts under the floor.
	Contribute(ctx context.Context, providerID uuid.UUID, amount decimal.Decimal) (*fund.Contribution, error)

	// GetFund retrieves a contribution visible to the caller
	GetFund(ctx context.Context, id, callerID uuid.UUID, role shared.Role) (*fund.Contribution, error)

	// ListFunds lists contributions: all for reviewers, the caller's own for
	// providers, an empty list for anybody else.
	ListFunds(ctx context.Context, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*fund.Contribution, error)
}

// ApprovalService decides pending loans and fund contributions
type ApprovalService interface {
	// DecideLoan approves or rejects a pending loan. Approval runs a
	// serializable capacity check against the fund ledger and fails with
	// ErrCapacityExceeded when the requested principal does not fit.
	DecideLoan(ctx context.Context, loanID uuid.UUID, approve bool, reviewerID uuid.UUID, correlationID string) (*loan.Loan, error)

	// DecideFund approves or rejects a pending fund contribution
	DecideFund(ctx context.Context, fundID uuid.UUID, approve bool, reviewerID uuid.UUID, correlationID string) (*fund.Contribution, error)
}

// PaymentService applies payments against loans owned by the caller
type PaymentService interface {
	// ApplyPayment atomically applies a payment to the loan and returns the
	// payment record together with the new remaining balance.
	ApplyPayment(ctx context.Context, loanID, callerID uuid.UUID, amount decimal.Decimal, referenceNumber, correlationID string) (*payment.Payment, decimal.Decimal, error)
}

// RateConfigService manages the single active rate configuration
type RateConfigService interface {
	// Get returns the active configuration or ErrConfigMissing
	Get(ctx context.Context) (*rateconfig.RateConfig, error)

	// Update replaces the active configuration after validation
	Update(ctx context.Context, minAmount, maxAmount, interestRatePercent decimal.Decimal, durationMonths int, freq rateconfig.CompoundFrequency) (*rateconfig.RateConfig, error)
}
