package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundflow-lending-core/internal/domain/payment"
)

func TestPaymentRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PaymentRepository{querier: mock, logger: logger}

	p := &payment.Payment{
		ID:              uuid.New(),
		LoanID:          uuid.New(),
		Amount:          decimal.NewFromInt(2000),
		PaymentDate:     time.Now(),
		ReferenceNumber: "PAY-0A1B2C3D",
	}

	query := `INSERT INTO payments`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(p.ID, p.LoanID, p.Amount, p.PaymentDate, p.ReferenceNumber).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, p)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate reference", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(p.ID, p.LoanID, p.Amount, p.PaymentDate, p.ReferenceNumber).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		err := repo.Create(ctx, p)
		assert.Error(t, err)
		var dupErr payment.ErrDuplicateReference
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, p.ReferenceNumber, dupErr.ReferenceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(p.ID, p.LoanID, p.Amount, p.PaymentDate, p.ReferenceNumber).
			WillReturnError(dbErr)

		err := repo.Create(ctx, p)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create payment")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentRepository_ListByLoan(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PaymentRepository{querier: mock, logger: logger}
	loanID := uuid.New()
	now := time.Now()

	query := `SELECT id, loan_id, amount, payment_date, reference_number\s+FROM payments\s+WHERE loan_id = \$1`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "loan_id", "amount", "payment_date", "reference_number"}).
			AddRow(uuid.New(), loanID, decimal.NewFromInt(2000), now, "PAY-0A1B2C3D").
			AddRow(uuid.New(), loanID, decimal.NewFromInt(1000), now.Add(-time.Hour), "PAY-FFEEDDCC")
		mock.ExpectQuery(query).WithArgs(loanID, 50, 0).WillReturnRows(rows)

		payments, err := repo.ListByLoan(ctx, loanID, 50, 0)
		assert.NoError(t, err)
		assert.Len(t, payments, 2)
		assert.Equal(t, "PAY-0A1B2C3D", payments[0].ReferenceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "loan_id", "amount", "payment_date", "reference_number"})
		mock.ExpectQuery(query).WithArgs(loanID, 50, 0).WillReturnRows(rows)

		payments, err := repo.ListByLoan(ctx, loanID, 50, 0)
		assert.NoError(t, err)
		assert.Empty(t, payments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentRepository_ExistsByReference(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PaymentRepository{querier: mock, logger: logger}

	query := `SELECT EXISTS`

	t.Run("taken reference", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
		mock.ExpectQuery(query).WithArgs("PAY-0A1B2C3D").WillReturnRows(rows)

		exists, err := repo.ExistsByReference(ctx, "PAY-0A1B2C3D")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("free reference", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
		mock.ExpectQuery(query).WithArgs("PAY-FFEEDDCC").WillReturnRows(rows)

		exists, err := repo.ExistsByReference(ctx, "PAY-FFEEDDCC")
		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs("PAY-0A1B2C3D").WillReturnError(dbErr)

		_, err := repo.ExistsByReference(ctx, "PAY-0A1B2C3D")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check payment reference")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentRepository_CountByLoan(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PaymentRepository{querier: mock, logger: logger}
	loanID := uuid.New()

	query := `SELECT COUNT\(\*\)\s+FROM payments\s+WHERE loan_id = \$1`

	rows := pgxmock.NewRows([]string{"count"}).AddRow(int64(3))
	mock.ExpectQuery(query).WithArgs(loanID).WillReturnRows(rows)

	count, err := repo.CountByLoan(ctx, loanID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
