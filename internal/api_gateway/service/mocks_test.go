package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/outbox"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeScheduleCache is an in-memory stand-in for the Redis schedule cache
type fakeScheduleCache struct {
	entries            map[uuid.UUID][]loan.Installment
	setCalls           int
	invalidateAllCalls int
}

func newFakeScheduleCache() *fakeScheduleCache {
	return &fakeScheduleCache{entries: make(map[uuid.UUID][]loan.Installment)}
}

func (c *fakeScheduleCache) Get(ctx context.Context, loanID uuid.UUID) ([]loan.Installment, bool) {
	schedule, ok := c.entries[loanID]
	return schedule, ok
}

func (c *fakeScheduleCache) Set(ctx context.Context, loanID uuid.UUID, schedule []loan.Installment) {
	c.entries[loanID] = schedule
	c.setCalls++
}

func (c *fakeScheduleCache) Invalidate(ctx context.Context, loanID uuid.UUID) {
	delete(c.entries, loanID)
}

func (c *fakeScheduleCache) InvalidateAll(ctx context.Context) {
	c.entries = make(map[uuid.UUID][]loan.Installment)
	c.invalidateAllCalls++
}

// fakeTxRunner executes the transactional closure directly with a nil
// transaction; the repository mocks return themselves from WithTx.
type fakeTxRunner struct{}

func (fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (fakeTxRunner) ExecuteTxWithOptions(ctx context.Context, _ pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context, limit, offset int) ([]*loan.Loan, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateBalanceAndStatus(ctx context.Context, id uuid.UUID, remaining decimal.Decimal, status shared.Status) error {
	args := m.Called(ctx, id, remaining, status)
	return args.Error(0)
}

func (m *MockLoanRepository) ApprovedPrincipalTotal(ctx context.Context, exclude uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, exclude)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) SaveSchedule(ctx context.Context, id uuid.UUID, schedule []loan.Installment) error {
	args := m.Called(ctx, id, schedule)
	return args.Error(0)
}

func (m *MockLoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return m
}

type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) Create(ctx context.Context, c *fund.Contribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockFundRepository) GetByID(ctx context.Context, id uuid.UUID) (*fund.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Contribution), args.Error(1)
}

func (m *MockFundRepository) List(ctx context.Context, limit, offset int) ([]*fund.Contribution, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fund.Contribution), args.Error(1)
}

func (m *MockFundRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*fund.Contribution, error) {
	args := m.Called(ctx, providerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fund.Contribution), args.Error(1)
}

func (m *MockFundRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*fund.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Contribution), args.Error(1)
}

func (m *MockFundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockFundRepository) ApprovedTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFundRepository) WithTx(tx pgx.Tx) fund.Repository {
	return m
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, loanID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByLoan(ctx context.Context, loanID uuid.UUID) (int64, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) ExistsByReference(ctx context.Context, referenceNumber string) (bool, error) {
	args := m.Called(ctx, referenceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return m
}

type MockRateConfigRepository struct {
	mock.Mock
}

func (m *MockRateConfigRepository) Get(ctx context.Context) (*rateconfig.RateConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rateconfig.RateConfig), args.Error(1)
}

func (m *MockRateConfigRepository) Upsert(ctx context.Context, cfg *rateconfig.RateConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

// Verify interface implementations
var (
	_ TxRunner              = fakeTxRunner{}
	_ ScheduleCache         = (*fakeScheduleCache)(nil)
	_ loan.Repository       = (*MockLoanRepository)(nil)
	_ fund.Repository       = (*MockFundRepository)(nil)
	_ payment.Repository    = (*MockPaymentRepository)(nil)
	_ rateconfig.Repository = (*MockRateConfigRepository)(nil)
	_ outbox.Repository     = (*MockOutboxRepository)(nil)
)
