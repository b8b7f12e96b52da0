package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// LoanServiceImpl implements the LoanService interface
type LoanServiceImpl struct {
	logger         *slog.Logger
	loanRepo       loan.Repository
	paymentRepo    payment.Repository
	rateConfigRepo rateconfig.Repository
	scheduleCache  ScheduleCache // optional, may be nil
}

// NewLoanService creates a new loan service
func NewLoanService(logger *slog.Logger, loanRepo loan.Repository, paymentRepo payment.Repository, rateConfigRepo rateconfig.Repository, scheduleCache ScheduleCache) LoanService {
	return &LoanServiceImpl{
		logger:         logger,
		loanRepo:       loanRepo,
		paymentRepo:    paymentRepo,
		rateConfigRepo: rateConfigRepo,
		scheduleCache:  scheduleCache,
	}
}

// ApplyForLoan creates a pending loan priced by the active rate configuration.
// The repayment schedule is materialized immediately so the loan carries its
// terms even if the configuration changes later.
func (s *LoanServiceImpl) ApplyForLoan(ctx context.Context, customerID uuid.UUID, principal decimal.Decimal, termMonths int) (*loan.Loan, error) {
	cfg, err := s.rateConfigRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !cfg.AllowsPrincipal(principal) {
		return nil, loan.ErrPrincipalOutOfBounds{Principal: principal, Min: cfg.MinAmount, Max: cfg.MaxAmount}
	}

	if termMonths <= 0 {
		termMonths = cfg.DurationMonths
	}

	now := time.Now()
	l, err := loan.NewLoan(customerID, principal, cfg.InterestRatePercent, termMonths, &now)
	if err != nil {
		return nil, err
	}

	schedule, err := loan.GenerateSchedule(principal, cfg.InterestRatePercent, termMonths, now, cfg.CompoundFrequency)
	if err != nil {
		return nil, err
	}
	l.Schedule = schedule
	if len(schedule) > 0 {
		endDate := schedule[len(schedule)-1].DueDate
		l.EndDate = &endDate
	}

	if err := s.loanRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan application created",
		"loan_id", l.ID,
		"customer_id", customerID,
		"principal", principal.StringFixed(2),
		"term_months", termMonths,
	)

	return l, nil
}

// GetLoan retrieves a loan, enforcing that non-reviewers only see their own
func (s *LoanServiceImpl) GetLoan(ctx context.Context, id, callerID uuid.UUID, role shared.Role) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != shared.RoleReviewer && l.CustomerID != callerID {
		return nil, loan.ErrNotLoanOwner{LoanID: id, CallerID: callerID}
	}

	return l, nil
}

// ListLoans lists loans scoped by the caller's role
func (s *LoanServiceImpl) ListLoans(ctx context.Context, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*loan.Loan, error) {
	offset := (page - 1) * perPage

	switch role {
	case shared.RoleReviewer:
		return s.loanRepo.List(ctx, perPage, offset)
	case shared.RoleCustomer:
		return s.loanRepo.ListByCustomer(ctx, callerID, perPage, offset)
	default:
		return []*loan.Loan{}, nil
	}
}

// GetSchedule recomputes the repayment schedule from the loan's stored terms
// using the active configuration's compound frequency, persists the snapshot,
// and returns it. A warm cache entry short-circuits the recompute.
func (s *LoanServiceImpl) GetSchedule(ctx context.Context, loanID, callerID uuid.UUID, role shared.Role) ([]loan.Installment, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if role != shared.RoleReviewer && l.CustomerID != callerID {
		return nil, loan.ErrNotLoanOwner{LoanID: loanID, CallerID: callerID}
	}

	if s.scheduleCache != nil {
		if schedule, ok := s.scheduleCache.Get(ctx, loanID); ok {
			return schedule, nil
		}
	}

	cfg, err := s.rateConfigRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	startDate := l.CreatedAt
	if l.StartDate != nil {
		startDate = *l.StartDate
	}

	schedule, err := loan.GenerateSchedule(l.Principal, l.InterestRatePercent, l.TermMonths, startDate, cfg.CompoundFrequency)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.SaveSchedule(ctx, loanID, schedule); err != nil {
		return nil, err
	}

	if s.scheduleCache != nil {
		s.scheduleCache.Set(ctx, loanID, schedule)
	}

	return schedule, nil
}

// ListPayments retrieves paginated payment history for a loan
func (s *LoanServiceImpl) ListPayments(ctx context.Context, loanID, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*payment.Payment, int64, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, 0, err
	}

	if role != shared.RoleReviewer && l.CustomerID != callerID {
		return nil, 0, loan.ErrNotLoanOwner{LoanID: loanID, CallerID: callerID}
	}

	offset := (page - 1) * perPage
	payments, err := s.paymentRepo.ListByLoan(ctx, loanID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.paymentRepo.CountByLoan(ctx, loanID)
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// EstimateInstallment runs the calculator for arbitrary terms. The flat
// monthly EMI is always returned; the frequency-aware figure is attached
// when an active configuration exists.
func (s *LoanServiceImpl) EstimateInstallment(ctx context.Context, principal, annualRatePercent decimal.Decimal, termMonths int) (*InstallmentEstimate, error) {
	installment, err := loan.ComputeInstallment(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}

	totalPayment := installment.Mul(decimal.NewFromInt(int64(termMonths)))
	estimate := &InstallmentEstimate{
		Installment:   installment,
		TotalPayment:  totalPayment,
		TotalInterest: totalPayment.Sub(principal),
	}

	cfg, err := s.rateConfigRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, rateconfig.ErrConfigMissing) {
			return estimate, nil
		}
		return nil, err
	}

	sophisticated, err := loan.ComputeInstallmentWithFrequency(principal, annualRatePercent, termMonths, cfg.CompoundFrequency)
	if err != nil {
		return nil, err
	}
	estimate.SophisticatedInstallment = &sophisticated

	return estimate, nil
}
