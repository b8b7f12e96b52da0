package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
)

// respondDomainError maps typed domain errors onto HTTP responses. Anything
// outside the known taxonomy is logged and reported as an internal error.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, rateconfig.ErrConfigMissing):
		RespondWithError(c, 500, "CONFIG_MISSING", rateconfig.ErrConfigMissing.Error())

	case errors.Is(err, loan.ErrCapacityExceeded{}),
		errors.Is(err, loan.ErrPrincipalOutOfBounds{}),
		errors.Is(err, fund.ErrAmountBelowMinimum{}),
		errors.Is(err, loan.ErrPaymentExceedsBalance),
		errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, loan.ErrInvalidTerm),
		errors.Is(err, rateconfig.ErrInvalidBounds),
		errors.Is(err, rateconfig.ErrInvalidRate),
		errors.Is(err, rateconfig.ErrInvalidDuration),
		errors.Is(err, rateconfig.ErrInvalidFreq):
		RespondBadRequest(c, err.Error())

	case errors.Is(err, loan.ErrNotLoanOwner{}):
		RespondForbidden(c, "")

	case errors.Is(err, loan.ErrLoanNotFound{}):
		RespondNotFound(c, "Loan not found")
	case errors.Is(err, fund.ErrFundNotFound{}):
		RespondNotFound(c, "Fund contribution not found")
	case errors.Is(err, payment.ErrPaymentNotFound{}):
		RespondNotFound(c, "Payment not found")

	case errors.Is(err, loan.ErrAlreadyDecided{}),
		errors.Is(err, fund.ErrAlreadyDecided{}),
		errors.Is(err, payment.ErrDuplicateReference{}):
		RespondConflict(c, err.Error())

	default:
		logger.Error("Unhandled service error", "error", err)
		RespondInternalError(c)
	}
}
