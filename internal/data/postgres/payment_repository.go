package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/platform/persistence"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations
const pgUniqueViolation = "23505"

// PaymentRepository implements the payment.Repository interface for PostgreSQL
type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentRepository creates a new PostgreSQL payment repository
func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *PaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &PaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a payment record. Returns ErrDuplicateReference if the
// reference number collides with an existing payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, loan_id, amount, payment_date, reference_number)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.LoanID,
		p.Amount,
		p.PaymentDate,
		p.ReferenceNumber,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return payment.ErrDuplicateReference{ReferenceNumber: p.ReferenceNumber}
		}
		r.logger.Error("Failed to create payment", "loan_id", p.LoanID.String(), "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `
		SELECT id, loan_id, amount, payment_date, reference_number
		FROM payments
		WHERE id = $1
	`

	var p payment.Payment
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.LoanID,
		&p.Amount,
		&p.PaymentDate,
		&p.ReferenceNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound{PaymentID: id}
		}
		r.logger.Error("Failed to get payment", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &p, nil
}

// ListByLoan retrieves a loan's payments ordered by payment date, newest first
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*payment.Payment, error) {
	query := `
		SELECT id, loan_id, amount, payment_date, reference_number
		FROM payments
		WHERE loan_id = $1
		ORDER BY payment_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, loanID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list payments", "loan_id", loanID.String(), "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		var p payment.Payment
		err := rows.Scan(
			&p.ID,
			&p.LoanID,
			&p.Amount,
			&p.PaymentDate,
			&p.ReferenceNumber,
		)
		if err != nil {
			r.logger.Error("Failed to scan payment", "error", err)
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over payments", "error", err)
		return nil, fmt.Errorf("error iterating over payments: %w", err)
	}

	return payments, nil
}

// ExistsByReference reports whether any payment carries the reference number
func (r *PaymentRepository) ExistsByReference(ctx context.Context, referenceNumber string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM payments
			WHERE reference_number = $1
		)
	`

	var exists bool
	err := r.querier.QueryRow(ctx, query, referenceNumber).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check payment reference", "reference_number", referenceNumber, "error", err)
		return false, fmt.Errorf("failed to check payment reference: %w", err)
	}

	return exists, nil
}

// CountByLoan returns the number of payments recorded against a loan
func (r *PaymentRepository) CountByLoan(ctx context.Context, loanID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM payments
		WHERE loan_id = $1
	`

	var count int64
	err := r.querier.QueryRow(ctx, query, loanID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count payments", "loan_id", loanID.String(), "error", err)
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}

	return count, nil
}
