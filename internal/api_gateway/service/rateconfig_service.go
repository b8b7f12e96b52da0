package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/rateconfig"
)

// RateConfigServiceImpl implements the RateConfigService interface
type RateConfigServiceImpl struct {
	logger         *slog.Logger
	rateConfigRepo rateconfig.Repository
	scheduleCache  ScheduleCache // optional, may be nil
}

// NewRateConfigService creates a new rate configuration service
func NewRateConfigService(logger *slog.Logger, rateConfigRepo rateconfig.Repository, scheduleCache ScheduleCache) RateConfigService {
	return &RateConfigServiceImpl{
		logger:         logger,
		rateConfigRepo: rateConfigRepo,
		scheduleCache:  scheduleCache,
	}
}

// Get returns the active configuration or ErrConfigMissing
func (s *RateConfigServiceImpl) Get(ctx context.Context) (*rateconfig.RateConfig, error) {
	return s.rateConfigRepo.Get(ctx)
}

// Update replaces the active configuration. Cached schedules are dropped so
// subsequent schedule reads pick up the new compound frequency.
func (s *RateConfigServiceImpl) Update(ctx context.Context, minAmount, maxAmount, interestRatePercent decimal.Decimal, durationMonths int, freq rateconfig.CompoundFrequency) (*rateconfig.RateConfig, error) {
	cfg, err := rateconfig.New(minAmount, maxAmount, interestRatePercent, durationMonths, freq)
	if err != nil {
		return nil, err
	}

	if err := s.rateConfigRepo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	if s.scheduleCache != nil {
		s.scheduleCache.InvalidateAll(ctx)
	}

	s.logger.Info("Rate configuration updated",
		"min_amount", cfg.MinAmount.StringFixed(2),
		"max_amount", cfg.MaxAmount.StringFixed(2),
		"interest_rate_percent", cfg.InterestRatePercent.String(),
		"duration_months", cfg.DurationMonths,
		"compound_frequency", string(cfg.CompoundFrequency),
	)

	return cfg, nil
}
