package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
	"github.com/fundflow-lending-core/internal/domain/shared"
)

// RateConfigHandler handles HTTP requests for the rate configuration
type RateConfigHandler struct {
	rateConfigService service.RateConfigService
	logger            *slog.Logger
}

// NewRateConfigHandler creates a new rate configuration handler
func NewRateConfigHandler(logger *slog.Logger, rateConfigService service.RateConfigService) *RateConfigHandler {
	return &RateConfigHandler{
		rateConfigService: rateConfigService,
		logger:            logger,
	}
}

// Get returns the active rate configuration
func (h *RateConfigHandler) Get(c *gin.Context) {
	if middleware.GetUserRole(c) != shared.RoleReviewer {
		RespondForbidden(c, "Only reviewers can read the rate configuration")
		return
	}

	cfg, err := h.rateConfigService.Get(c.Request.Context())
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapRateConfigToResponse(cfg))
}

// Update replaces the active rate configuration
func (h *RateConfigHandler) Update(c *gin.Context) {
	if middleware.GetUserRole(c) != shared.RoleReviewer {
		RespondForbidden(c, "Only reviewers can update the rate configuration")
		return
	}

	var req RateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cfg, err := h.rateConfigService.Update(
		c.Request.Context(),
		req.MinAmount,
		req.MaxAmount,
		req.InterestRatePercent,
		req.DurationMonths,
		rateconfig.CompoundFrequency(req.CompoundFrequency),
	)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapRateConfigToResponse(cfg))
}
