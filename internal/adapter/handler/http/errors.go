package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domainErrors "github.com/TechBursterOrg/homehero-sub003/internal/domain/errors"
)

// writeError maps domain error types to HTTP responses.
func writeError(c echo.Context, err error) error {
	var pe *domainErrors.PaymentError
	if !errors.As(err, &pe) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "internal error",
			"code":  "INTERNAL",
		})
	}

	status := http.StatusInternalServerError
	switch pe.Type {
	case domainErrors.ErrTypeValidation:
		status = http.StatusBadRequest
	case domainErrors.ErrTypeNotFound:
		status = http.StatusNotFound
	case domainErrors.ErrTypeInvalidState, domainErrors.ErrTypeDuplicateRequest:
		status = http.StatusConflict
	case domainErrors.ErrTypeGateway, domainErrors.ErrTypePaymentInitialization:
		status = http.StatusBadGateway
	case domainErrors.ErrTypeBookingCreation:
		status = http.StatusInternalServerError
	}

	body := echo.Map{
		"error": pe.Message,
		"code":  pe.Type,
	}
	if pe.BookingID != "" {
		body["booking_id"] = pe.BookingID
	}

	return c.JSON(status, body)
}
