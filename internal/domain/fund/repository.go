package fund

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

// Repository defines fund contribution persistence operations
type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contribution, error)
	List(ctx context.Context, limit, offset int) ([]*Contribution, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Contribution, error)

	// LockForUpdate acquires a pessimistic row lock for a status decision;
	// use inside a transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Contribution, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.Status) error

	// ApprovedTotal sums all APPROVED contributions: the fund ledger's
	// currently lendable capacity.
	ApprovedTotal(ctx context.Context) (decimal.Decimal, error)

	WithTx(tx pgx.Tx) Repository
}
