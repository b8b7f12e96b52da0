package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines payment persistence operations
type Repository interface {
	// Create stores a payment record.
	// Returns ErrDuplicateReference if the reference number is already taken.
	Create(ctx context.Context, p *Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*Payment, error)
	CountByLoan(ctx context.Context, loanID uuid.UUID) (int64, error)

	// ExistsByReference reports whether any payment carries the reference
	ExistsByReference(ctx context.Context, referenceNumber string) (bool, error)

	WithTx(tx pgx.Tx) Repository
}
