package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fundflow-lending-core/internal/api_gateway"
	"github.com/fundflow-lending-core/internal/api_gateway/service"
	"github.com/fundflow-lending-core/internal/config"
	"github.com/fundflow-lending-core/internal/data/postgres"
	"github.com/fundflow-lending-core/internal/logger"
	"github.com/fundflow-lending-core/internal/platform/cache"
	"github.com/fundflow-lending-core/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize the schedule cache. The cache is advisory; a missing Redis
	// only degrades schedule reads to recomputes.
	var scheduleCache service.ScheduleCache
	redisCache, err := cache.NewScheduleCache(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Warn("Schedule cache unavailable, continuing without it", "error", err)
	} else {
		scheduleCache = redisCache
	}

	// Initialize repositories
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	fundRepo := postgres.NewFundRepository(log, postgresDB)
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	rateConfigRepo := postgres.NewRateConfigRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize services
	fundService := service.NewFundService(log, fundRepo)
	loanService := service.NewLoanService(log, loanRepo, paymentRepo, rateConfigRepo, scheduleCache)
	approvalService := service.NewApprovalService(log, postgresDB, loanRepo, fundRepo, outboxRepo)
	paymentService := service.NewPaymentService(log, postgresDB, loanRepo, paymentRepo, outboxRepo)
	rateConfigService := service.NewRateConfigService(log, rateConfigRepo, scheduleCache)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, fundService, loanService, approvalService, paymentService, rateConfigService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if redisCache != nil {
		if err = redisCache.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
