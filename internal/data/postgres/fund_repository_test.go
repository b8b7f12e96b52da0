package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

func TestFundRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FundRepository{querier: mock, logger: logger}

	now := time.Now()
	c := &fund.Contribution{
		ID:         uuid.New(),
		ProviderID: uuid.New(),
		Amount:     decimal.NewFromInt(10000),
		Status:     shared.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `INSERT INTO fund_contributions`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(c.ID, c.ProviderID, c.Amount, c.Status, c.CreatedAt, c.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, c)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(c.ID, c.ProviderID, c.Amount, c.Status, c.CreatedAt, c.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, c)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create fund contribution")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFundRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FundRepository{querier: mock, logger: logger}
	fundID := uuid.New()
	now := time.Now()

	expected := &fund.Contribution{
		ID:         fundID,
		ProviderID: uuid.New(),
		Amount:     decimal.NewFromInt(10000),
		Status:     shared.StatusApproved,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `SELECT id, provider_id, amount, status, created_at, updated_at\s+FROM fund_contributions\s+WHERE id = \$1`
	rows := pgxmock.NewRows([]string{"id", "provider_id", "amount", "status", "created_at", "updated_at"}).
		AddRow(expected.ID, expected.ProviderID, expected.Amount, expected.Status, expected.CreatedAt, expected.UpdatedAt)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(fundID).WillReturnRows(rows)

		c, err := repo.GetByID(ctx, fundID)
		assert.NoError(t, err)
		assert.Equal(t, expected, c)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(fundID).WillReturnError(pgx.ErrNoRows)

		c, err := repo.GetByID(ctx, fundID)
		assert.Error(t, err)
		assert.Nil(t, c)
		var notFoundErr fund.ErrFundNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, fundID, notFoundErr.FundID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFundRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FundRepository{querier: mock, logger: logger}
	fundID := uuid.New()

	query := `UPDATE fund_contributions\s+SET status = \$1, updated_at = \$2\s+WHERE id = \$3`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(shared.StatusApproved, pgxmock.AnyArg(), fundID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, fundID, shared.StatusApproved)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(shared.StatusRejected, pgxmock.AnyArg(), fundID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, fundID, shared.StatusRejected)
		assert.Error(t, err)
		var notFoundErr fund.ErrFundNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, fundID, notFoundErr.FundID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFundRepository_ApprovedTotal(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FundRepository{querier: mock, logger: logger}

	query := `SELECT COALESCE\(SUM\(amount\), 0\)\s+FROM fund_contributions\s+WHERE status = \$1`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.NewFromInt(25000))
		mock.ExpectQuery(query).WithArgs(shared.StatusApproved).WillReturnRows(rows)

		total, err := repo.ApprovedTotal(ctx)
		assert.NoError(t, err)
		assert.True(t, decimal.NewFromInt(25000).Equal(total))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty ledger sums to zero", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.Zero)
		mock.ExpectQuery(query).WithArgs(shared.StatusApproved).WillReturnRows(rows)

		total, err := repo.ApprovedTotal(ctx)
		assert.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("sum db error")
		mock.ExpectQuery(query).WithArgs(shared.StatusApproved).WillReturnError(dbErr)

		total, err := repo.ApprovedTotal(ctx)
		assert.Error(t, err)
		assert.True(t, total.IsZero())
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
