package errors

import (
	"errors"
	"fmt"
)

// PaymentError represents errors in the booking/escrow payment path.
type PaymentError struct {
	Type      string
	Message   string
	BookingID string
	PaymentID string
	Cause     error
}

func (e *PaymentError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.BookingID != "" {
		msg += fmt.Sprintf(" (booking: %s)", e.BookingID)
	}
	if e.PaymentID != "" {
		msg += fmt.Sprintf(" (payment: %s)", e.PaymentID)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" - %v", e.Cause)
	}
	return msg
}

func (e *PaymentError) Unwrap() error {
	return e.Cause
}

// Payment error types
const (
	ErrTypeValidation            = "VALIDATION_ERROR"
	ErrTypeGateway               = "GATEWAY_ERROR"
	ErrTypeInvalidState          = "INVALID_STATE"
	ErrTypeBookingCreation       = "BOOKING_CREATION_FAILED"
	ErrTypePaymentInitialization = "PAYMENT_INITIALIZATION_FAILED"
	ErrTypeNotFound              = "NOT_FOUND"
	ErrTypeDuplicateRequest      = "DUPLICATE_REQUEST"
)

// NewValidationError reports bad input shape. It is never retried.
func NewValidationError(message string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewGatewayError reports a payment gateway failure. The booking id gives the
// caller enough context to retry the initialization leg alone.
func NewGatewayError(bookingID string, cause error) *PaymentError {
	return &PaymentError{
		Type:      ErrTypeGateway,
		Message:   "payment gateway request failed",
		BookingID: bookingID,
		Cause:     cause,
	}
}

// NewUntrustedRedirectError reports a gateway redirect URL outside the
// configured allow-list.
func NewUntrustedRedirectError(bookingID, redirectURL string) *PaymentError {
	return &PaymentError{
		Type:      ErrTypeGateway,
		Message:   fmt.Sprintf("gateway returned an untrusted redirect target: %s", redirectURL),
		BookingID: bookingID,
	}
}

// NewInvalidStateError reports a transition that is not legal from the
// current state.
func NewInvalidStateError(bookingID, message string) *PaymentError {
	return &PaymentError{
		Type:      ErrTypeInvalidState,
		Message:   message,
		BookingID: bookingID,
	}
}

// NewBookingCreationError aborts the whole workflow; nothing to compensate.
func NewBookingCreationError(cause error) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeBookingCreation,
		Message: "failed to create booking",
		Cause:   cause,
	}
}

// NewPaymentInitializationError reports a step-2 failure after the booking was
// persisted. The booking id lets the caller retry initialization against the
// same booking instead of creating a duplicate.
func NewPaymentInitializationError(bookingID string, cause error) *PaymentError {
	return &PaymentError{
		Type:      ErrTypePaymentInitialization,
		Message:   "failed to initialize payment, booking remains awaiting payment",
		BookingID: bookingID,
		Cause:     cause,
	}
}

// NewNotFoundError reports a missing booking or payment.
func NewNotFoundError(message string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeNotFound,
		Message: message,
	}
}

// NewDuplicateRequestError reports a concurrent duplicate submission that was
// rejected by the coalescing window.
func NewDuplicateRequestError(customerID, providerID string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeDuplicateRequest,
		Message: fmt.Sprintf("a matching booking request from customer %s to provider %s is already in flight", customerID, providerID),
	}
}

// IsType reports whether err is a PaymentError of the given type.
func IsType(err error, errType string) bool {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Type == errType
	}
	return false
}
