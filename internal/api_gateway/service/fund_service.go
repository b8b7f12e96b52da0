package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// FundServiceImpl implements the FundService interface
type FundServiceImpl struct {
	logger   *slog.Logger
	fundRepo fund.Repository
}

// NewFundService creates a new fund contribution service
func NewFundService(logger *slog.Logger, fundRepo fund.Repository) FundService {
	return &FundServiceImpl{
		logger:   logger,
		fundRepo: fundRepo,
	}
}

// Contribute records a pending capital contribution for the provider
func (s *FundServiceImpl) Contribute(ctx context.Context, providerID uuid.UUID, amount decimal.Decimal) (*fund.Contribution, error) {
	c, err := fund.NewContribution(providerID, amount)
	if err != nil {
		return nil, err
	}

	if err := s.fundRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Fund contribution created",
		"fund_id", c.ID,
		"provider_id", providerID,
		"amount", amount.StringFixed(2),
	)

	return c, nil
}

// GetFund retrieves a contribution, enforcing that non-reviewers only see their own
func (s *FundServiceImpl) GetFund(ctx context.Context, id, callerID uuid.UUID, role shared.Role) (*fund.Contribution, error) {
	c, err := s.fundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != shared.RoleReviewer && c.ProviderID != callerID {
		return nil, fund.ErrFundNotFound{FundID: id}
	}

	return c, nil
}

// ListFunds lists contributions scoped by the caller's role
func (s *FundServiceImpl) ListFunds(ctx context.Context, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*fund.Contribution, error) {
	offset := (page - 1) * perPage

	switch role {
	case shared.RoleReviewer:
		return s.fundRepo.List(ctx, perPage, offset)
	case shared.RoleProvider:
		return s.fundRepo.ListByProvider(ctx, callerID, perPage, offset)
	default:
		return []*fund.Contribution{}, nil
	}
}
