package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	domainErrors "github.com/TechBursterOrg/homehero-sub003/internal/domain/errors"
)

// BookingOrchestrator sequences booking creation and payment initialization
// as two dependent but independently retryable steps. The booking is the
// durable checkpoint; payment initialization is the retryable tail.
type BookingOrchestrator struct {
	bookings *BookingService
	escrow   *EscrowService
	logger   *zap.Logger
}

func NewBookingOrchestrator(bookings *BookingService, escrow *EscrowService, logger *zap.Logger) *BookingOrchestrator {
	return &BookingOrchestrator{
		bookings: bookings,
		escrow:   escrow,
		logger:   logger,
	}
}

// BookingWithPaymentResult is what the caller needs to hand off to the
// external gateway.
type BookingWithPaymentResult struct {
	BookingID   string `json:"booking_id"`
	PaymentID   string `json:"payment_id"`
	RedirectURL string `json:"redirect_url"`
}

// RequestBookingWithPayment creates a booking in awaiting_payment, then
// initializes an escrow payment from the amount recorded on the booking and
// returns the gateway redirect target.
//
// If creation fails nothing is persisted and a BOOKING_CREATION_FAILED error
// is returned. If initialization fails the booking stays persisted in
// awaiting_payment and the PAYMENT_INITIALIZATION_FAILED error carries its id
// so the caller can retry step two alone via RetryPayment.
func (o *BookingOrchestrator) RequestBookingWithPayment(ctx context.Context, in CreateBookingInput) (*BookingWithPaymentResult, error) {
	booking, err := o.bookings.Create(ctx, in)
	if err != nil {
		if domainErrors.IsType(err, domainErrors.ErrTypeValidation) || domainErrors.IsType(err, domainErrors.ErrTypeDuplicateRequest) {
			return nil, err
		}
		return nil, domainErrors.NewBookingCreationError(err)
	}

	return o.initializeFor(ctx, booking)
}

// RetryPayment re-runs the payment-initialization leg for a booking that is
// still awaiting payment. An existing non-failed payment is reused, so a
// retry never mints a duplicate.
func (o *BookingOrchestrator) RetryPayment(ctx context.Context, bookingID string) (*BookingWithPaymentResult, error) {
	booking, err := o.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingStatusAwaitingPayment {
		return nil, domainErrors.NewValidationError(fmt.Sprintf("booking %s is %s, not awaiting payment", bookingID, booking.Status))
	}

	return o.initializeFor(ctx, booking)
}

func (o *BookingOrchestrator) initializeFor(ctx context.Context, booking *entity.Booking) (*BookingWithPaymentResult, error) {
	// Use the amount recorded on the booking, never a recomputed value, so
	// booking and payment amounts cannot diverge.
	payment, err := o.escrow.InitializePayment(ctx, booking.ID, booking.Amount, booking.CustomerEmail)
	if err != nil {
		o.logger.Warn("Payment initialization failed, booking remains awaiting payment",
			zap.String("booking_id", booking.ID),
			zap.Error(err))
		return nil, domainErrors.NewPaymentInitializationError(booking.ID, err)
	}

	return &BookingWithPaymentResult{
		BookingID:   booking.ID,
		PaymentID:   payment.ID,
		RedirectURL: payment.RedirectURL,
	}, nil
}
