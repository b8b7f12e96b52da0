package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/shared"
	"github.com/fundflow-lending-core/internal/platform/persistence"
)

// FundRepository implements the fund.Repository interface for PostgreSQL
type FundRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFundRepository creates a new PostgreSQL fund contribution repository
func NewFundRepository(logger *slog.Logger, db *persistence.PostgresDB) fund.Repository {
	return &FundRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *FundRepository) WithTx(tx pgx.Tx) fund.Repository {
	return &FundRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new fund contribution in pending status
func (r *FundRepository) Create(ctx context.Context, c *fund.Contribution) error {
	query := `
		INSERT INTO fund_contributions (id, provider_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.ProviderID,
		c.Amount,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create fund contribution", "error", err)
		return fmt.Errorf("failed to create fund contribution: %w", err)
	}

	return nil
}

// GetByID retrieves a fund contribution by its ID
func (r *FundRepository) GetByID(ctx context.Context, id uuid.UUID) (*fund.Contribution, error) {
	query := `
		SELECT id, provider_id, amount, status, created_at, updated_at
		FROM fund_contributions
		WHERE id = $1
	`

	var c fund.Contribution
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ProviderID,
		&c.Amount,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fund.ErrFundNotFound{FundID: id}
		}
		r.logger.Error("Failed to get fund contribution", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get fund contribution: %w", err)
	}

	return &c, nil
}

// List retrieves fund contributions ordered by creation time, newest first
func (r *FundRepository) List(ctx context.Context, limit, offset int) ([]*fund.Contribution, error) {
	query := `
		SELECT id, provider_id, amount, status, created_at, updated_at
		FROM fund_contributions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list fund contributions", "error", err)
		return nil, fmt.Errorf("failed to list fund contributions: %w", err)
	}
	defer rows.Close()

	return r.collectContributions(rows)
}

// ListByProvider retrieves a provider's contributions ordered by creation time, newest first
func (r *FundRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*fund.Contribution, error) {
	query := `
		SELECT id, provider_id, amount, status, created_at, updated_at
		FROM fund_contributions
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, providerID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list fund contributions by provider", "provider_id", providerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list fund contributions by provider: %w", err)
	}
	defer rows.Close()

	return r.collectContributions(rows)
}

// LockForUpdate obtains a pessimistic lock on the contribution and returns its
// current state. This should be used within a transaction.
func (r *FundRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*fund.Contribution, error) {
	query := `
		SELECT id, provider_id, amount, status, created_at, updated_at
		FROM fund_contributions
		WHERE id = $1
		FOR UPDATE
	`

	var c fund.Contribution
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ProviderID,
		&c.Amount,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fund.ErrFundNotFound{FundID: id}
		}
		r.logger.Error("Failed to lock fund contribution for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock fund contribution for update: %w", err)
	}

	return &c, nil
}

// UpdateStatus updates the contribution status.
// Returns ErrFundNotFound if the contribution doesn't exist.
func (r *FundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.Status) error {
	query := `
		UPDATE fund_contributions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update fund contribution status", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update fund contribution status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fund.ErrFundNotFound{FundID: id}
	}

	return nil
}

// ApprovedTotal sums all approved contributions: the lendable capacity
func (r *FundRepository) ApprovedTotal(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM fund_contributions
		WHERE status = $1
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, shared.StatusApproved).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum approved fund contributions", "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum approved fund contributions: %w", err)
	}

	return total, nil
}

func (r *FundRepository) collectContributions(rows pgx.Rows) ([]*fund.Contribution, error) {
	var contributions []*fund.Contribution
	for rows.Next() {
		var c fund.Contribution
		err := rows.Scan(
			&c.ID,
			&c.ProviderID,
			&c.Amount,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan fund contribution", "error", err)
			return nil, fmt.Errorf("failed to scan fund contribution: %w", err)
		}
		contributions = append(contributions, &c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over fund contributions", "error", err)
		return nil, fmt.Errorf("error iterating over fund contributions: %w", err)
	}

	return contributions, nil
}
