package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/fundflow-lending-core/internal/domain/rateconfig"
	"github.com/fundflow-lending-core/internal/platform/persistence"
)

// RateConfigRepository implements the rateconfig.Repository interface for
// PostgreSQL. A single row holds the active configuration; the singleton
// constraint is enforced with a fixed-value key column.
type RateConfigRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRateConfigRepository creates a new PostgreSQL rate config repository
func NewRateConfigRepository(logger *slog.Logger, db *persistence.PostgresDB) rateconfig.Repository {
	return &RateConfigRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Get returns the active configuration.
// Returns ErrConfigMissing when no configuration has been set yet.
func (r *RateConfigRepository) Get(ctx context.Context) (*rateconfig.RateConfig, error) {
	query := `
		SELECT id, min_amount, max_amount, interest_rate_percent, duration_months, compound_frequency, updated_at
		FROM rate_configs
		WHERE singleton = TRUE
	`

	var cfg rateconfig.RateConfig
	err := r.querier.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&cfg.MinAmount,
		&cfg.MaxAmount,
		&cfg.InterestRatePercent,
		&cfg.DurationMonths,
		&cfg.CompoundFrequency,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rateconfig.ErrConfigMissing
		}
		r.logger.Error("Failed to get rate config", "error", err)
		return nil, fmt.Errorf("failed to get rate config: %w", err)
	}

	return &cfg, nil
}

// Upsert replaces the active configuration, creating it if absent
func (r *RateConfigRepository) Upsert(ctx context.Context, cfg *rateconfig.RateConfig) error {
	query := `
		INSERT INTO rate_configs (id, singleton, min_amount, max_amount, interest_rate_percent, duration_months, compound_frequency, updated_at)
		VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (singleton) DO UPDATE SET
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			interest_rate_percent = EXCLUDED.interest_rate_percent,
			duration_months = EXCLUDED.duration_months,
			compound_frequency = EXCLUDED.compound_frequency,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.querier.Exec(ctx, query,
		cfg.ID,
		cfg.MinAmount,
		cfg.MaxAmount,
		cfg.InterestRatePercent,
		cfg.DurationMonths,
		cfg.CompoundFrequency,
		cfg.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert rate config", "error", err)
		return fmt.Errorf("failed to upsert rate config: %w", err)
	}

	return nil
}
