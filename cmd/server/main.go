package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/clock"
	"github.com/TechBursterOrg/homehero-sub003/internal/config"
	"github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/database"
	gatewayFactory "github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/gateway"
	httpServer "github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/http"
	"github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/scheduler"
	"github.com/TechBursterOrg/homehero-sub003/internal/usecase"
	"github.com/TechBursterOrg/homehero-sub003/pkg/logger"
)

func main() {
	// Load .env in local development; ignore absence in deployed environments.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Redis backs the duplicate-submission guard
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Initialize repositories
	repos := database.NewRepositories(db, redisClient, zapLogger)

	// Select the configured payment gateway
	gw, err := gatewayFactory.NewFactory(cfg, zapLogger).GetGateway()
	if err != nil {
		zapLogger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Wire use cases
	clk := clock.NewSystem()
	bookingService := usecase.NewBookingService(repos.Booking, repos.Payment, repos.DuplicateGuard, clk, zapLogger, usecase.BookingServiceConfig{
		DuplicateWindow: cfg.Service.DuplicateWindow,
	})
	escrowService := usecase.NewEscrowService(repos.Booking, repos.Payment, gw, clk, zapLogger, usecase.EscrowServiceConfig{
		CommissionRate:       cfg.Service.CommissionRate,
		AutoRefundWindow:     cfg.Service.AutoRefundWindow,
		AllowedRedirectHosts: cfg.Gateway.AllowedRedirectHosts,
		Currency:             cfg.Service.Currency,
		CallbackBaseURL:      cfg.Gateway.CallbackBaseURL,
	})
	orchestrator := usecase.NewBookingOrchestrator(bookingService, escrowService, zapLogger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the auto-refund scheduler
	refundScheduler := scheduler.NewRefundScheduler(escrowService, cfg.Service.RefundSweepInterval, cfg.Service.RefundSweepBatchSize, zapLogger)
	refundScheduler.Start(ctx)

	// Initialize HTTP server
	srv := httpServer.NewServer(cfg, zapLogger, orchestrator, bookingService, escrowService, gw)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down...")

	refundScheduler.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
