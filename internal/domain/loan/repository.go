package loan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

// Repository defines loan persistence operations
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	List(ctx context.Context, limit, offset int) ([]*Loan, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Loan, error)

	// LockForUpdate acquires a pessimistic row lock for balance or status
	// mutation; use inside a transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.Status) error
	UpdateBalanceAndStatus(ctx context.Context, id uuid.UUID, remaining decimal.Decimal, status shared.Status) error

	// ApprovedPrincipalTotal sums the principal of all APPROVED loans,
	// excluding the given loan (pass uuid.Nil to exclude nothing).
	ApprovedPrincipalTotal(ctx context.Context, exclude uuid.UUID) (decimal.Decimal, error)

	// SaveSchedule persists the materialized schedule snapshot on the loan
	SaveSchedule(ctx context.Context, id uuid.UUID, schedule []Installment) error

	WithTx(tx pgx.Tx) Repository
}
