package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/audit"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/outbox"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// maxReferenceRetries bounds regeneration of colliding auto-generated
// reference numbers
const maxReferenceRetries = 3

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	logger      *slog.Logger
	db          TxRunner
	loanRepo    loan.Repository
	paymentRepo payment.Repository
	outboxRepo  outbox.Repository
}

// NewPaymentService creates a new payment service
func NewPaymentService(logger *slog.Logger, db TxRunner, loanRepo loan.Repository, paymentRepo payment.Repository, outboxRepo outbox.Repository) PaymentService {
	return &PaymentServiceImpl{
		logger:      logger,
		db:          db,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
	}
}

// ApplyPayment applies a payment against the caller's loan. Any owned loan
// accepts payments while its balance is positive, whatever its decision
// status. One transaction covers the row lock, the balance update, the
// payment insert and the outbox insert; any failure rolls back the whole
// unit of work.
func (s *PaymentServiceImpl) ApplyPayment(ctx context.Context, loanID, callerID uuid.UUID, amount decimal.Decimal, referenceNumber, correlationID string) (*payment.Payment, decimal.Decimal, error) {
	var applied *payment.Payment
	var remaining decimal.Decimal

	autoReference := referenceNumber == ""

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)

		l, err := loanRepo.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if l.CustomerID != callerID {
			return loan.ErrNotLoanOwner{LoanID: loanID, CallerID: callerID}
		}

		if err := l.ApplyPayment(amount); err != nil {
			return err
		}

		p, err := s.createPayment(ctx, paymentRepo, loanID, amount, referenceNumber, autoReference)
		if err != nil {
			return err
		}

		if err := loanRepo.UpdateBalanceAndStatus(ctx, loanID, l.RemainingBalance, l.Status); err != nil {
			return err
		}

		event := audit.NewEvent(shared.LoanEventPaymentApplied, l.ID, callerID, amount, correlationID).
			WithPayment(l.RemainingBalance, p.ReferenceNumber)
		if err := s.enqueueEvent(ctx, tx, event); err != nil {
			return err
		}

		if l.Repaid() {
			repaidEvent := audit.NewEvent(shared.LoanEventLoanRepaid, l.ID, callerID, l.Principal, correlationID)
			if err := s.enqueueEvent(ctx, tx, repaidEvent); err != nil {
				return err
			}
		}

		applied = p
		remaining = l.RemainingBalance
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	s.logger.Info("Payment applied",
		"loan_id", loanID,
		"payment_id", applied.ID,
		"amount", amount.StringFixed(2),
		"remaining_balance", remaining.StringFixed(2),
		"reference_number", applied.ReferenceNumber,
	)

	return applied, remaining, nil
}

// createPayment inserts the payment row. Collisions are detected with a
// lookup before the insert: a unique violation would abort the surrounding
// transaction, so there is no recovering from one after the fact. The unique
// constraint remains the backstop for a concurrent insert racing the lookup.
func (s *PaymentServiceImpl) createPayment(ctx context.Context, paymentRepo payment.Repository, loanID uuid.UUID, amount decimal.Decimal, referenceNumber string, autoReference bool) (*payment.Payment, error) {
	if autoReference {
		var err error
		referenceNumber, err = s.unusedReference(ctx, paymentRepo)
		if err != nil {
			return nil, err
		}
	} else {
		taken, err := paymentRepo.ExistsByReference(ctx, referenceNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, payment.ErrDuplicateReference{ReferenceNumber: referenceNumber}
		}
	}

	p := payment.New(loanID, amount, referenceNumber)
	if err := paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// unusedReference generates reference numbers until one is free
func (s *PaymentServiceImpl) unusedReference(ctx context.Context, paymentRepo payment.Repository) (string, error) {
	for attempt := 0; attempt <= maxReferenceRetries; attempt++ {
		ref := payment.NewReferenceNumber()
		taken, err := paymentRepo.ExistsByReference(ctx, ref)
		if err != nil {
			return "", err
		}
		if !taken {
			return ref, nil
		}
	}
	return "", fmt.Errorf("could not generate an unused payment reference after %d attempts", maxReferenceRetries+1)
}

func (s *PaymentServiceImpl) enqueueEvent(ctx context.Context, tx pgx.Tx, event *audit.Event) error {
	message, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, message)
}
