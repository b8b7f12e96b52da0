package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// FundHandler handles HTTP requests for fund contribution operations
type FundHandler struct {
	fundService service.FundService
	logger      *slog.Logger
}

// NewFundHandler creates a new fund handler
func NewFundHandler(logger *slog.Logger, fundService service.FundService) *FundHandler {
	return &FundHandler{
		fundService: fundService,
		logger:      logger,
	}
}

// Contribute records a provider's capital contribution
func (h *FundHandler) Contribute(c *gin.Context) {
	if middleware.GetUserRole(c) != shared.RoleProvider {
		RespondForbidden(c, "Only providers can contribute funds")
		return
	}

	var req ContributeFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if !req.Amount.IsPositive() {
		RespondBadRequest(c, "Amount must be positive")
		return
	}

	contribution, err := h.fundService.Contribute(c.Request.Context(), middleware.GetUserID(c), req.Amount)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapFundToResponse(contribution))
}

// GetByID retrieves a fund contribution visible to the caller
func (h *FundHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "fund")
	if !ok {
		return
	}

	contribution, err := h.fundService.GetFund(c.Request.Context(), id, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapFundToResponse(contribution))
}

// List retrieves fund contributions scoped by the caller's role
func (h *FundHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	funds, err := h.fundService.ListFunds(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c), pagination.Page, pagination.PerPage)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]FundResponse, 0, len(funds))
	for _, contribution := range funds {
		responses = append(responses, mapFundToResponse(contribution))
	}

	RespondOK(c, responses)
}
