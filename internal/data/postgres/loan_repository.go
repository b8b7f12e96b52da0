// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the lending platform.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/shared"
	"github.com/fundflow-lending-core/internal/platform/persistence"
)

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(), // Initialize with the pool
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls. The returned repository will use the provided
// transaction for all database operations.
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx, // Use the transaction
		logger:  r.logger,
	}
}

const loanColumns = `id, customer_id, principal, term_months, interest_rate_percent,
	start_date, end_date, remaining_balance, status, payment_schedule, created_at, updated_at`

// Create stores a new loan in pending status
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (id, customer_id, principal, term_months, interest_rate_percent,
			start_date, end_date, remaining_balance, status, payment_schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	scheduleJSON, err := marshalSchedule(l.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode payment schedule: %w", err)
	}

	_, err = r.querier.Exec(ctx, query,
		l.ID,
		l.CustomerID,
		l.Principal,
		l.TermMonths,
		l.InterestRatePercent,
		l.StartDate,
		l.EndDate,
		l.RemainingBalance,
		l.Status,
		scheduleJSON,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create loan", "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1`, loanColumns)

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// List retrieves loans ordered by creation time, newest first
func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*loan.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, loanColumns)

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list loans", "error", err)
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	return r.collectLoans(rows)
}

// ListByCustomer retrieves a customer's loans ordered by creation time, newest first
func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*loan.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, loanColumns)

	rows, err := r.querier.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list loans by customer", "customer_id", customerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list loans by customer: %w", err)
	}
	defer rows.Close()

	return r.collectLoans(rows)
}

// LockForUpdate obtains a pessimistic lock on the loan and returns its current state.
// This should be used within a transaction when strong consistency is required.
func (r *LoanRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1 FOR UPDATE`, loanColumns)

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to lock loan for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock loan for update: %w", err)
	}

	return l, nil
}

// UpdateStatus updates the loan status.
// Returns ErrLoanNotFound if the loan doesn't exist.
func (r *LoanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.Status) error {
	query := `
		UPDATE loans
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update loan status", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: id}
	}

	return nil
}

// UpdateBalanceAndStatus persists the remaining balance together with the
// status in one statement, keeping payment application atomic.
func (r *LoanRepository) UpdateBalanceAndStatus(ctx context.Context, id uuid.UUID, remaining decimal.Decimal, status shared.Status) error {
	query := `
		UPDATE loans
		SET remaining_balance = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query, remaining, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update loan balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update loan balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: id}
	}

	return nil
}

// ApprovedPrincipalTotal sums the principal of all approved loans, excluding
// the given loan. Pass uuid.Nil to exclude nothing.
func (r *LoanRepository) ApprovedPrincipalTotal(ctx context.Context, exclude uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(principal), 0)
		FROM loans
		WHERE status = $1 AND id <> $2
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, shared.StatusApproved, exclude).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum approved loan principal", "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum approved loan principal: %w", err)
	}

	return total, nil
}

// SaveSchedule persists the materialized schedule snapshot together with the
// loan's start and end dates derived from it.
func (r *LoanRepository) SaveSchedule(ctx context.Context, id uuid.UUID, schedule []loan.Installment) error {
	query := `
		UPDATE loans
		SET payment_schedule = $1,
			start_date = COALESCE(start_date, $2),
			end_date = $3,
			updated_at = $4
		WHERE id = $5
	`

	scheduleJSON, err := marshalSchedule(schedule)
	if err != nil {
		return fmt.Errorf("failed to encode payment schedule: %w", err)
	}

	var startDate, endDate *time.Time
	if len(schedule) > 0 {
		first := schedule[0].DueDate
		last := schedule[len(schedule)-1].DueDate
		startDate = &first
		endDate = &last
	}

	result, err := r.querier.Exec(ctx, query, scheduleJSON, startDate, endDate, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to save payment schedule", "id", id.String(), "error", err)
		return fmt.Errorf("failed to save payment schedule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: id}
	}

	return nil
}

func marshalSchedule(schedule []loan.Installment) ([]byte, error) {
	if schedule == nil {
		return nil, nil
	}
	return json.Marshal(schedule)
}

func (r *LoanRepository) scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	var scheduleJSON []byte
	err := row.Scan(
		&l.ID,
		&l.CustomerID,
		&l.Principal,
		&l.TermMonths,
		&l.InterestRatePercent,
		&l.StartDate,
		&l.EndDate,
		&l.RemainingBalance,
		&l.Status,
		&scheduleJSON,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &l.Schedule); err != nil {
			return nil, fmt.Errorf("failed to decode payment schedule: %w", err)
		}
	}

	return &l, nil
}

func (r *LoanRepository) collectLoans(rows pgx.Rows) ([]*loan.Loan, error) {
	var loans []*loan.Loan
	for rows.Next() {
		l, err := r.scanLoan(rows)
		if err != nil {
			r.logger.Error("Failed to scan loan", "error", err)
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over loans", "error", err)
		return nil, fmt.Errorf("error iterating over loans: %w", err)
	}

	return loans, nil
}
