package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// LoanHandler handles HTTP requests for loan operations
type LoanHandler struct {
	loanService service.LoanService
	logger      *slog.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(logger *slog.Logger, loanService service.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Apply handles a customer's loan application. The rate comes from the active
// configuration; the term defaults from it when omitted.
func (h *LoanHandler) Apply(c *gin.Context) {
	if middleware.GetUserRole(c) != shared.RoleCustomer {
		RespondForbidden(c, "Only customers can apply for loans")
		return
	}

	var req ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if !req.Principal.IsPositive() {
		RespondBadRequest(c, "Principal must be positive")
		return
	}

	customerID := middleware.GetUserID(c)
	l, err := h.loanService.ApplyForLoan(c.Request.Context(), customerID, req.Principal, req.TermMonths)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapLoanToResponse(l, h.sophisticatedEMI(c.Request.Context(), l)))
}

// GetByID retrieves a loan visible to the caller
func (h *LoanHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "loan")
	if !ok {
		return
	}

	l, err := h.loanService.GetLoan(c.Request.Context(), id, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l, h.sophisticatedEMI(c.Request.Context(), l)))
}

// List retrieves loans scoped by the caller's role
func (h *LoanHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	loans, err := h.loanService.ListLoans(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c), pagination.Page, pagination.PerPage)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		responses = append(responses, mapLoanToResponse(l, h.sophisticatedEMI(c.Request.Context(), l)))
	}

	RespondOK(c, responses)
}

// GetSchedule returns the loan's repayment schedule
func (h *LoanHandler) GetSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "loan")
	if !ok {
		return
	}

	schedule, err := h.loanService.GetSchedule(c.Request.Context(), id, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapScheduleToResponse(schedule))
}

// ListPayments retrieves the paginated payment history of a loan
func (h *LoanHandler) ListPayments(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "loan")
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	payments, total, err := h.loanService.ListPayments(c.Request.Context(), id, middleware.GetUserID(c), middleware.GetUserRole(c), pagination.Page, pagination.PerPage)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, mapPaymentToResponse(p))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Estimate runs the loan calculator for arbitrary terms
func (h *LoanHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	estimate, err := h.loanService.EstimateInstallment(c.Request.Context(), req.Principal, req.AnnualRatePercent, req.TermMonths)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	response := EstimateResponse{
		Installment:   estimate.Installment.StringFixed(2),
		TotalPayment:  estimate.TotalPayment.StringFixed(2),
		TotalInterest: estimate.TotalInterest.StringFixed(2),
	}
	if estimate.SophisticatedInstallment != nil {
		response.SophisticatedEMI = estimate.SophisticatedInstallment.StringFixed(2)
	}

	RespondOK(c, response)
}

// sophisticatedEMI computes the frequency-aware installment for loan
// responses. Missing configuration leaves the field out; the figure is
// decoration, so a failed lookup is logged rather than failing the request.
func (h *LoanHandler) sophisticatedEMI(ctx context.Context, l *loan.Loan) *decimal.Decimal {
	estimate, err := h.loanService.EstimateInstallment(ctx, l.Principal, l.InterestRatePercent, l.TermMonths)
	if err != nil {
		h.logger.Warn("Could not compute frequency-aware installment", "loan_id", l.ID, "error", err)
		return nil
	}
	return estimate.SophisticatedInstallment
}

// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context, logger *slog.Logger, kind string) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Error("Invalid "+kind+" ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid "+kind+" ID")
		return uuid.Nil, false
	}
	return id, true
}
