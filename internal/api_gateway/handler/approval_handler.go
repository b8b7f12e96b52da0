package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// ApprovalHandler handles HTTP requests for loan and fund decisions
type ApprovalHandler struct {
	approvalService service.ApprovalService
	logger          *slog.Logger
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(logger *slog.Logger, approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
		logger:          logger,
	}
}

// DecideLoan approves or rejects a pending loan
func (h *ApprovalHandler) DecideLoan(c *gin.Context) {
	id, approve, ok := h.bindDecision(c, "loan")
	if !ok {
		return
	}

	l, err := h.approvalService.DecideLoan(c.Request.Context(), id, approve, middleware.GetUserID(c), middleware.GetCorrelationID(c))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l, nil))
}

// DecideFund approves or rejects a pending fund contribution
func (h *ApprovalHandler) DecideFund(c *gin.Context) {
	id, approve, ok := h.bindDecision(c, "fund")
	if !ok {
		return
	}

	contribution, err := h.approvalService.DecideFund(c.Request.Context(), id, approve, middleware.GetUserID(c), middleware.GetCorrelationID(c))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapFundToResponse(contribution))
}

// bindDecision enforces the reviewer role and parses the decision request
func (h *ApprovalHandler) bindDecision(c *gin.Context, kind string) (id uuid.UUID, approve, ok bool) {
	if middleware.GetUserRole(c) != shared.RoleReviewer {
		RespondForbidden(c, "Only reviewers can decide "+kind+"s")
		return
	}

	parsed, parsedOK := parseIDParam(c, h.logger, kind)
	if !parsedOK {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	return parsed, req.Status == "APPROVED", true
}
