package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundflow-lending-core/internal/api_gateway/handler"
	"github.com/fundflow-lending-core/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	fundHandler *handler.FundHandler,
	loanHandler *handler.LoanHandler,
	approvalHandler *handler.ApprovalHandler,
	paymentHandler *handler.PaymentHandler,
	rateConfigHandler *handler.RateConfigHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints; caller identity comes from the upstream gateway
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity())
	{
		// Fund contribution operations
		funds := v1.Group("/funds")
		{
			funds.POST("", fundHandler.Contribute)
			funds.GET("", fundHandler.List)
			funds.GET("/:id", fundHandler.GetByID)
			funds.PATCH("/:id/approval", approvalHandler.DecideFund)
		}

		// Loan operations
		loans := v1.Group("/loans")
		{
			loans.POST("", loanHandler.Apply)
			loans.GET("", loanHandler.List)
			loans.POST("/estimate", loanHandler.Estimate)
			loans.GET("/:id", loanHandler.GetByID)
			loans.PATCH("/:id/approval", approvalHandler.DecideLoan)
			loans.GET("/:id/schedule", loanHandler.GetSchedule)
			loans.GET("/:id/payments", loanHandler.ListPayments)
		}

		// Payment operations
		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.Create)
		}

		// Rate configuration
		rateConfig := v1.Group("/rate-config")
		{
			rateConfig.GET("", rateConfigHandler.Get)
			rateConfig.PUT("", rateConfigHandler.Update)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
