package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/usecase"
)

type BookingHandler struct {
	orchestrator *usecase.BookingOrchestrator
	bookings     *usecase.BookingService
	logger       *zap.Logger
}

func NewBookingHandler(orchestrator *usecase.BookingOrchestrator, bookings *usecase.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		orchestrator: orchestrator,
		bookings:     bookings,
		logger:       logger,
	}
}

type CreateBookingRequest struct {
	CustomerID    string `json:"customer_id" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone"`

	ProviderID    string `json:"provider_id" validate:"required"`
	ProviderName  string `json:"provider_name" validate:"required"`
	ProviderEmail string `json:"provider_email" validate:"omitempty,email"`

	ServiceType     string `json:"service_type" validate:"required"`
	Description     string `json:"description"`
	ServiceLocation string `json:"service_location" validate:"required"`
	Timeframe       string `json:"timeframe"`
	SpecialRequests string `json:"special_requests"`

	Budget string `json:"budget"`
}

// CreateWithPayment handles POST /bookings-with-payment.
func (h *BookingHandler) CreateWithPayment(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	result, err := h.orchestrator.RequestBookingWithPayment(c.Request().Context(), usecase.CreateBookingInput{
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ProviderID:      req.ProviderID,
		ProviderName:    req.ProviderName,
		ProviderEmail:   req.ProviderEmail,
		ServiceType:     req.ServiceType,
		Description:     req.Description,
		ServiceLocation: req.ServiceLocation,
		Timeframe:       req.Timeframe,
		SpecialRequests: req.SpecialRequests,
		Budget:          req.Budget,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// RetryPayment handles POST /bookings/:id/payment: re-run the payment
// initialization leg against an existing awaiting-payment booking.
func (h *BookingHandler) RetryPayment(c echo.Context) error {
	result, err := h.orchestrator.RetryPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	booking, err := h.bookings.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Accept handles POST /bookings/:id/accept (provider action).
func (h *BookingHandler) Accept(c echo.Context) error {
	if err := h.bookings.Accept(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "confirmed"})
}

// Complete handles POST /bookings/:id/complete.
func (h *BookingHandler) Complete(c echo.Context) error {
	if err := h.bookings.Complete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "completed"})
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	if err := h.bookings.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}
