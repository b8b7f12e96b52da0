package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fundflow-lending-core/internal/domain/audit"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// MockAuditRepository for testing
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, event *audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*audit.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Event), args.Error(1)
}

func (m *MockAuditRepository) GetBySubjectID(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*audit.Event, error) {
	args := m.Called(ctx, subjectID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Event), args.Error(1)
}

func (m *MockAuditRepository) CountBySubjectID(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordingService_RecordEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("records a new event", func(t *testing.T) {
		auditRepo := new(MockAuditRepository)
		event := audit.NewEvent(shared.LoanEventPaymentApplied, uuid.New(), uuid.New(), decimal.NewFromInt(100), "corr-1")
		auditRepo.On("Create", ctx, event).Return(nil)

		svc := NewRecordingService(newTestLogger(), auditRepo)

		err := svc.RecordEvent(ctx, event)
		require.NoError(t, err)
		auditRepo.AssertExpectations(t)
	})

	t.Run("acknowledges duplicate events without error", func(t *testing.T) {
		auditRepo := new(MockAuditRepository)
		event := audit.NewEvent(shared.LoanEventLoanApproved, uuid.New(), uuid.New(), decimal.NewFromInt(5000), "corr-2")
		auditRepo.On("Create", ctx, event).Return(audit.ErrDuplicateEvent{EventID: event.EventID})

		svc := NewRecordingService(newTestLogger(), auditRepo)

		err := svc.RecordEvent(ctx, event)
		assert.NoError(t, err)
	})

	t.Run("propagates store errors for retry", func(t *testing.T) {
		auditRepo := new(MockAuditRepository)
		event := audit.NewEvent(shared.LoanEventLoanRepaid, uuid.New(), uuid.New(), decimal.NewFromInt(5000), "corr-3")
		auditRepo.On("Create", ctx, event).Return(errors.New("mongo unavailable"))

		svc := NewRecordingService(newTestLogger(), auditRepo)

		err := svc.RecordEvent(ctx, event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mongo unavailable")
	})

	t.Run("rejects events without an event ID", func(t *testing.T) {
		auditRepo := new(MockAuditRepository)

		svc := NewRecordingService(newTestLogger(), auditRepo)

		err := svc.RecordEvent(ctx, &audit.Event{})
		assert.ErrorIs(t, err, ErrMissingEventID)
		auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
