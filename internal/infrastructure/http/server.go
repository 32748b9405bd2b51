package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/TechBursterOrg/homehero-sub003/internal/adapter/handler/http"
	"github.com/TechBursterOrg/homehero-sub003/internal/config"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	"github.com/TechBursterOrg/homehero-sub003/internal/middleware/auth"
	"github.com/TechBursterOrg/homehero-sub003/internal/usecase"
	"github.com/TechBursterOrg/homehero-sub003/pkg/logger"
)

type Server struct {
	config       *config.Config
	logger       *zap.Logger
	echo         *echo.Echo
	orchestrator *usecase.BookingOrchestrator
	bookings     *usecase.BookingService
	escrow       *usecase.EscrowService
	gateway      gateway.PaymentGateway
}

type requestValidator struct {
	validator *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	orchestrator *usecase.BookingOrchestrator,
	bookings *usecase.BookingService,
	escrow *usecase.EscrowService,
	gw gateway.PaymentGateway,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validator: validator.New()}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:       cfg,
		logger:       log,
		echo:         e,
		orchestrator: orchestrator,
		bookings:     bookings,
		escrow:       escrow,
		gateway:      gw,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(s.orchestrator, s.bookings, s.logger)
	paymentHandler := handlers.NewPaymentHandler(s.escrow, s.gateway, s.logger)

	// JWT middleware configuration. Gateway callbacks authenticate with their
	// own signature scheme, so they stay off the JWT path.
	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
		},
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Gateway-initiated callback (signature-verified, no JWT)
	v1.POST("/payments/:id/callback", paymentHandler.Callback)

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	// Bookings
	protected.POST("/bookings-with-payment", bookingHandler.CreateWithPayment)
	protected.GET("/bookings/:id", bookingHandler.Get)
	protected.POST("/bookings/:id/payment", bookingHandler.RetryPayment)
	protected.POST("/bookings/:id/accept", bookingHandler.Accept)
	protected.POST("/bookings/:id/complete", bookingHandler.Complete)
	protected.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	// Payments
	protected.GET("/payments/:id", paymentHandler.Get)
	protected.POST("/payments/:id/release", paymentHandler.Release)
	protected.POST("/payments/:id/refund", paymentHandler.Refund)
}
