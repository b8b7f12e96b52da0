package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fundflow-lending-core/internal/domain/audit"
	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/outbox"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

const (
	// pgSerializationFailure is the SQLSTATE raised when a serializable
	// transaction must be retried
	pgSerializationFailure = "40001"

	// maxApprovalRetries bounds the serialization retry loop
	maxApprovalRetries = 3
)

// ApprovalServiceImpl implements the ApprovalService interface
type ApprovalServiceImpl struct {
	logger     *slog.Logger
	db         TxRunner
	loanRepo   loan.Repository
	fundRepo   fund.Repository
	outboxRepo outbox.Repository
}

// NewApprovalService creates a new approval service
func NewApprovalService(logger *slog.Logger, db TxRunner, loanRepo loan.Repository, fundRepo fund.Repository, outboxRepo outbox.Repository) ApprovalService {
	return &ApprovalServiceImpl{
		logger:     logger,
		db:         db,
		loanRepo:   loanRepo,
		fundRepo:   fundRepo,
		outboxRepo: outboxRepo,
	}
}

// DecideLoan approves or rejects a pending loan. Approval admits the loan only
// if total approved principal plus this loan's principal fits within the total
// approved fund capital. The check and the status flip share one serializable
// transaction so concurrent approvals cannot jointly overshoot capacity.
func (s *ApprovalServiceImpl) DecideLoan(ctx context.Context, loanID uuid.UUID, approve bool, reviewerID uuid.UUID, correlationID string) (*loan.Loan, error) {
	if !approve {
		return s.rejectLoan(ctx, loanID, reviewerID, correlationID)
	}

	var decided *loan.Loan
	var err error
	for attempt := 0; attempt < maxApprovalRetries; attempt++ {
		decided, err = s.approveLoanOnce(ctx, loanID, reviewerID, correlationID)
		if err == nil || !isSerializationFailure(err) {
			return decided, err
		}
		s.logger.Warn("Loan approval hit serialization conflict, retrying",
			"loan_id", loanID,
			"attempt", attempt+1,
		)
	}
	return nil, err
}

func (s *ApprovalServiceImpl) approveLoanOnce(ctx context.Context, loanID, reviewerID uuid.UUID, correlationID string) (*loan.Loan, error) {
	var decided *loan.Loan

	txOptions := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := s.db.ExecuteTxWithOptions(ctx, txOptions, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)

		l, err := loanRepo.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		fundsTotal, err := s.fundRepo.WithTx(tx).ApprovedTotal(ctx)
		if err != nil {
			return err
		}
		loansTotal, err := loanRepo.ApprovedPrincipalTotal(ctx, loanID)
		if err != nil {
			return err
		}

		if loansTotal.Add(l.Principal).GreaterThan(fundsTotal) {
			return loan.ErrCapacityExceeded{
				Requested: l.Principal,
				Available: fundsTotal.Sub(loansTotal),
			}
		}

		if err := l.Approve(); err != nil {
			return err
		}
		if err := loanRepo.UpdateStatus(ctx, loanID, l.Status); err != nil {
			return err
		}

		event := audit.NewEvent(shared.LoanEventLoanApproved, l.ID, reviewerID, l.Principal, correlationID)
		if err := s.enqueueEvent(ctx, tx, event); err != nil {
			return err
		}

		decided = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan approved",
		"loan_id", loanID,
		"reviewer_id", reviewerID,
		"principal", decided.Principal.StringFixed(2),
	)

	return decided, nil
}

func (s *ApprovalServiceImpl) rejectLoan(ctx context.Context, loanID, reviewerID uuid.UUID, correlationID string) (*loan.Loan, error) {
	var decided *loan.Loan

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)

		l, err := loanRepo.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if err := l.Reject(); err != nil {
			return err
		}
		if err := loanRepo.UpdateStatus(ctx, loanID, l.Status); err != nil {
			return err
		}

		event := audit.NewEvent(shared.LoanEventLoanRejected, l.ID, reviewerID, l.Principal, correlationID)
		if err := s.enqueueEvent(ctx, tx, event); err != nil {
			return err
		}

		decided = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan rejected", "loan_id", loanID, "reviewer_id", reviewerID)

	return decided, nil
}

// DecideFund approves or rejects a pending fund contribution. Fund approval
// is the source of lending capacity and carries no capacity check of its own.
func (s *ApprovalServiceImpl) DecideFund(ctx context.Context, fundID uuid.UUID, approve bool, reviewerID uuid.UUID, correlationID string) (*fund.Contribution, error) {
	var decided *fund.Contribution

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		fundRepo := s.fundRepo.WithTx(tx)

		c, err := fundRepo.LockForUpdate(ctx, fundID)
		if err != nil {
			return err
		}

		eventType := shared.LoanEventFundApproved
		if approve {
			err = c.Approve()
		} else {
			err = c.Reject()
			eventType = shared.LoanEventFundRejected
		}
		if err != nil {
			return err
		}

		if err := fundRepo.UpdateStatus(ctx, fundID, c.Status); err != nil {
			return err
		}

		event := audit.NewEvent(eventType, c.ID, reviewerID, c.Amount, correlationID)
		if err := s.enqueueEvent(ctx, tx, event); err != nil {
			return err
		}

		decided = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fund contribution decided",
		"fund_id", fundID,
		"reviewer_id", reviewerID,
		"status", string(decided.Status),
	)

	return decided, nil
}

func (s *ApprovalServiceImpl) enqueueEvent(ctx context.Context, tx pgx.Tx, event *audit.Event) error {
	message, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, message)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgSerializationFailure
}
