package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	"github.com/TechBursterOrg/homehero-sub003/internal/usecase"
)

type PaymentHandler struct {
	escrow  *usecase.EscrowService
	gateway gateway.PaymentGateway
	logger  *zap.Logger
}

func NewPaymentHandler(escrow *usecase.EscrowService, gw gateway.PaymentGateway, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		escrow:  escrow,
		gateway: gw,
		logger:  logger,
	}
}

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c echo.Context) error {
	payment, err := h.escrow.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// Callback handles POST /payments/:id/callback. The raw body and signature
// header go through the gateway's webhook verification before any state is
// touched; an event whose reference does not match the payment is rejected.
func (h *PaymentHandler) Callback(c echo.Context) error {
	paymentID := c.Param("id")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "unreadable callback body",
			"code":  "INVALID_BODY",
		})
	}

	signature := c.Request().Header.Get("X-Paystack-Signature")
	if signature == "" {
		signature = c.Request().Header.Get("Stripe-Signature")
	}

	event, err := h.gateway.ParseWebhook(body, signature)
	if err != nil {
		h.logger.Warn("Webhook verification failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "webhook verification failed",
			"code":  "INVALID_SIGNATURE",
		})
	}

	payment, err := h.escrow.GetPayment(c.Request().Context(), paymentID)
	if err != nil {
		return writeError(c, err)
	}
	if event.Reference != "" && event.Reference != payment.GatewayReference {
		h.logger.Warn("Webhook reference does not match payment",
			zap.String("payment_id", paymentID),
			zap.String("event_reference", event.Reference))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "callback reference does not match payment",
			"code":  "REFERENCE_MISMATCH",
		})
	}

	if err := h.escrow.ConfirmCallback(c.Request().Context(), paymentID, event.Status); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "processed"})
}

// Release handles POST /payments/:id/release.
func (h *PaymentHandler) Release(c echo.Context) error {
	payment, err := h.escrow.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if err := h.escrow.ReleasePayment(c.Request().Context(), payment.BookingID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "released"})
}

type refundRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Refund handles POST /payments/:id/refund.
func (h *PaymentHandler) Refund(c echo.Context) error {
	var req refundRequest
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

	payment, err := h.escrow.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if err := h.escrow.RefundPayment(c.Request().Context(), payment.BookingID, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "refunded"})
}
