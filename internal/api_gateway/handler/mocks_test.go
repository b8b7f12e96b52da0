package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestRouter builds a test engine with the caller identity injected, the
// way the Identity middleware would after validating the forwarded headers.
func setupTestRouter(userID uuid.UUID, role shared.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	})
	return r
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) ApplyForLoan(ctx context.Context, customerID uuid.UUID, principal decimal.Decimal, termMonths int) (*loan.Loan, error) {
	args := m.Called(ctx, customerID, principal, termMonths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, id, callerID uuid.UUID, role shared.Role) (*loan.Loan, error) {
	args := m.Called(ctx, id, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*loan.Loan, error) {
	args := m.Called(ctx, callerID, role, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanService) GetSchedule(ctx context.Context, loanID, callerID uuid.UUID, role shared.Role) ([]loan.Installment, error) {
	args := m.Called(ctx, loanID, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.Installment), args.Error(1)
}

func (m *MockLoanService) ListPayments(ctx context.Context, loanID, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*payment.Payment, int64, error) {
	args := m.Called(ctx, loanID, callerID, role, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanService) EstimateInstallment(ctx context.Context, principal, annualRatePercent decimal.Decimal, termMonths int) (*service.InstallmentEstimate, error) {
	args := m.Called(ctx, principal, annualRatePercent, termMonths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InstallmentEstimate), args.Error(1)
}

type MockFundService struct {
	mock.Mock
}

func (m *MockFundService) Contribute(ctx context.Context, providerID uuid.UUID, amount decimal.Decimal) (*fund.Contribution, error) {
	args := m.Called(ctx, providerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Contribution), args.Error(1)
}

func (m *MockFundService) GetFund(ctx context.Context, id, callerID uuid.UUID, role shared.Role) (*fund.Contribution, error) {
	args := m.Called(ctx, id, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Contribution), args.Error(1)
}

func (m *MockFundService) ListFunds(ctx context.Context, callerID uuid.UUID, role shared.Role, page, perPage int) ([]*fund.Contribution, error) {
	args := m.Called(ctx, callerID, role, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fund.Contribution), args.Error(1)
}

type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) DecideLoan(ctx context.Context, loanID uuid.UUID, approve bool, reviewerID uuid.UUID, correlationID string) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, approve, reviewerID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockApprovalService) DecideFund(ctx context.Context, fundID uuid.UUID, approve bool, reviewerID uuid.UUID, correlationID string) (*fund.Contribution, error) {
	args := m.Called(ctx, fundID, approve, reviewerID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Contribution), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ApplyPayment(ctx context.Context, loanID, callerID uuid.UUID, amount decimal.Decimal, referenceNumber, correlationID string) (*payment.Payment, decimal.Decimal, error) {
	args := m.Called(ctx, loanID, callerID, amount, referenceNumber, correlationID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*payment.Payment), args.Get(1).(decimal.Decimal), args.Error(2)
}

type MockRateConfigService struct {
	mock.Mock
}

func (m *MockRateConfigService) Get(ctx context.Context) (*rateconfig.RateConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateconfig.RateConfig), args.Error(1)
}

func (m *MockRateConfigService) Update(ctx context.Context, minAmount, maxAmount, interestRatePercent decimal.Decimal, durationMonths int, freq rateconfig.CompoundFrequency) (*rateconfig.RateConfig, error) {
	args := m.Called(ctx, minAmount, maxAmount, interestRatePercent, durationMonths, freq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateconfig.RateConfig), args.Error(1)
}

var (
	_ service.LoanService       = (*MockLoanService)(nil)
	_ service.FundService       = (*MockFundService)(nil)
	_ service.ApprovalService   = (*MockApprovalService)(nil)
	_ service.PaymentService    = (*MockPaymentService)(nil)
	_ service.RateConfigService = (*MockRateConfigService)(nil)
)
