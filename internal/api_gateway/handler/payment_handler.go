package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Create applies a payment against the caller's loan
func (h *PaymentHandler) Create(c *gin.Context) {
	if middleware.GetUserRole(c) != shared.RoleCustomer {
		RespondForbidden(c, "Only customers can make payments")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if !req.Amount.IsPositive() {
		RespondBadRequest(c, "Amount must be positive")
		return
	}

	loanID, err := uuid.Parse(req.LoanID)
	if err != nil {
		h.logger.Error("Invalid loan ID", "loan_id", req.LoanID, "error", err)
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	applied, remaining, err := h.paymentService.ApplyPayment(
		c.Request.Context(),
		loanID,
		middleware.GetUserID(c),
		req.Amount,
		req.ReferenceNumber,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	response := mapPaymentToResponse(applied)
	response.RemainingBalance = remaining.StringFixed(2)

	RespondCreated(c, response)
}
