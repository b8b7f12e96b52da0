package rateconfig

import "context"

// Repository manages the single active rate configuration.
type Repository interface {
	// Get returns the active configuration.
	// Returns ErrConfigMissing if none exists.
	Get(ctx context.Context) (*RateConfig, error)

	// Upsert replaces the active configuration, creating it if absent
	Upsert(ctx context.Context, cfg *RateConfig) error
}
