package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/clock"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	domainErrors "github.com/TechBursterOrg/homehero-sub003/internal/domain/errors"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

// AutoRefundReason marks refunds issued by the scheduler after the hold
// window elapsed without confirmation.
const AutoRefundReason = "auto_refund_window_elapsed"

// EscrowServiceConfig carries the escrow policy. CommissionRate is the single
// authoritative rate for the whole payment path.
type EscrowServiceConfig struct {
	CommissionRate       float64
	AutoRefundWindow     time.Duration
	AllowedRedirectHosts []string
	Currency             string
	CallbackBaseURL      string
}

// EscrowService owns the payment entity attached to a booking: holding,
// confirmation, release, refund and failure states.
type EscrowService struct {
	bookings       repository.BookingRepository
	payments       repository.PaymentRepository
	gateway        gateway.PaymentGateway
	clock          clock.Clock
	logger         *zap.Logger
	commissionRate decimal.Decimal
	config         EscrowServiceConfig
}

func NewEscrowService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	gw gateway.PaymentGateway,
	clk clock.Clock,
	logger *zap.Logger,
	config EscrowServiceConfig,
) *EscrowService {
	return &EscrowService{
		bookings:       bookings,
		payments:       payments,
		gateway:        gw,
		clock:          clk,
		logger:         logger,
		commissionRate: decimal.NewFromFloat(config.CommissionRate),
		config:         config,
	}
}

// InitializePayment creates a held escrow payment for an awaiting-payment
// booking and returns it with the gateway redirect target. Re-invoking for a
// booking that already has a non-failed payment returns that payment instead
// of creating a second one.
func (s *EscrowService) InitializePayment(ctx context.Context, bookingID string, amount int64, customerEmail string) (*entity.Payment, error) {
	if amount <= 0 {
		return nil, domainErrors.NewValidationError(fmt.Sprintf("payment amount must be positive, got %d", amount))
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domainErrors.NewValidationError(fmt.Sprintf("booking %s not found", bookingID))
	}
	if booking.Status != entity.BookingStatusAwaitingPayment {
		return nil, domainErrors.NewValidationError(fmt.Sprintf("booking %s is %s, not awaiting payment", bookingID, booking.Status))
	}

	if existing, err := s.payments.GetActiveByBookingID(ctx, bookingID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	attempts, err := s.payments.CountAttempts(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	session, err := s.gateway.CreateSession(ctx, &gateway.CreateSessionRequest{
		Reference:     reference,
		Amount:        amount,
		Currency:      s.config.Currency,
		CustomerEmail: customerEmail,
		Description:   fmt.Sprintf("HomeHero %s service", booking.ServiceType),
		CallbackURL:   s.config.CallbackBaseURL,
	})
	if err != nil {
		s.logger.Error("Gateway session creation failed",
			zap.String("booking_id", bookingID),
			zap.String("gateway", s.gateway.Name()),
			zap.Error(err))
		return nil, domainErrors.NewGatewayError(bookingID, err)
	}

	// Never surface a redirect target outside the allow-list as a trusted
	// payment destination.
	if !s.trustedRedirect(session.RedirectURL) {
		return nil, domainErrors.NewUntrustedRedirectError(bookingID, session.RedirectURL)
	}

	// The gateway may mint its own canonical reference (e.g. a checkout
	// session id); verification and callbacks are keyed by it.
	if session.Reference != "" {
		reference = session.Reference
	}

	commission := s.commissionFor(amount)
	now := s.clock.Now()
	autoRefundAt := now.Add(s.config.AutoRefundWindow)

	payment := &entity.Payment{
		ID:               uuid.NewString(),
		BookingID:        bookingID,
		Attempt:          attempts + 1,
		Amount:           amount,
		Commission:       commission,
		ProviderAmount:   amount - commission,
		Currency:         s.config.Currency,
		Status:           entity.PaymentStatusHeld,
		Gateway:          s.gateway.Name(),
		GatewayReference: reference,
		RedirectURL:      session.RedirectURL,
		HeldAt:           &now,
		AutoRefundAt:     &autoRefundAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateActivePayment) {
			// Lost a race with a concurrent initialization; reuse the winner.
			existing, lookupErr := s.payments.GetActiveByBookingID(ctx, bookingID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.logger.Info("Payment held in escrow",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", bookingID),
		zap.Int64("amount", payment.Amount),
		zap.Int64("commission", payment.Commission),
		zap.Int64("provider_amount", payment.ProviderAmount),
		zap.Time("auto_refund_at", autoRefundAt))

	return payment, nil
}

// ConfirmCallback applies a gateway-reported terminal status to a held
// payment. Applying the same terminal status twice is a no-op.
func (s *EscrowService) ConfirmCallback(ctx context.Context, paymentID string, gatewayStatus gateway.Status) error {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return domainErrors.NewNotFoundError(fmt.Sprintf("payment %s not found", paymentID))
	}

	switch gatewayStatus {
	case gateway.StatusSuccess:
		return s.confirmPayment(ctx, payment)
	case gateway.StatusFailed:
		return s.failPayment(ctx, payment, "gateway_declined", "gateway reported the charge as failed")
	case gateway.StatusPending:
		// Nothing to apply yet; the gateway will call back with the outcome.
		return nil
	default:
		return domainErrors.NewValidationError(fmt.Sprintf("unknown gateway status %q", gatewayStatus))
	}
}

// ReleasePayment transfers the provider's share after the customer confirmed
// the work. Legal only from payment confirmed + booking completed.
func (s *EscrowService) ReleasePayment(ctx context.Context, bookingID string) error {
	payment, err := s.payments.GetActiveByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if payment == nil {
		return domainErrors.NewNotFoundError(fmt.Sprintf("no active payment for booking %s", bookingID))
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return domainErrors.NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
	}

	if payment.Status != entity.PaymentStatusConfirmed {
		return domainErrors.NewInvalidStateError(bookingID, fmt.Sprintf("payment is %s, release requires confirmed", payment.Status))
	}
	if booking.Status != entity.BookingStatusCompleted {
		return domainErrors.NewInvalidStateError(bookingID, fmt.Sprintf("booking is %s, release requires completed", booking.Status))
	}

	now := s.clock.Now()
	ok, err := s.payments.UpdateStatusFrom(ctx, payment.ID, entity.PaymentStatusConfirmed, entity.PaymentStatusReleased, repository.PaymentStatusFields{
		ReleasedAt: &now,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return domainErrors.NewInvalidStateError(bookingID, "payment left confirmed before release was applied")
	}

	// The payout itself is settled out of band; this records the instruction.
	s.logger.Info("Funds transfer instruction issued to provider",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", bookingID),
		zap.String("provider_id", booking.ProviderID),
		zap.Int64("provider_amount", payment.ProviderAmount))

	return nil
}

// RefundPayment returns the full amount to the customer. Legal from held or
// confirmed; terminal states are refused.
func (s *EscrowService) RefundPayment(ctx context.Context, bookingID, reason string) error {
	payment, err := s.payments.GetActiveByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if payment == nil {
		return domainErrors.NewNotFoundError(fmt.Sprintf("no active payment for booking %s", bookingID))
	}
	return s.refund(ctx, payment, reason)
}

// RefundExpired refunds held payments whose auto-refund deadline has elapsed.
// Safe under concurrent runners: the compare-and-set transition lets exactly
// one sweep win each payment. Returns the number of refunds issued.
func (s *EscrowService) RefundExpired(ctx context.Context, limit int) (int, error) {
	now := s.clock.Now()
	expired, err := s.payments.ListExpiredHeld(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, payment := range expired {
		ok, err := s.payments.UpdateStatusFrom(ctx, payment.ID, entity.PaymentStatusHeld, entity.PaymentStatusRefunded, repository.PaymentStatusFields{
			RefundReason: AutoRefundReason,
			RefundedAt:   &now,
			UpdatedAt:    now,
		})
		if err != nil {
			s.logger.Error("Auto-refund transition failed",
				zap.String("payment_id", payment.ID),
				zap.Error(err))
			continue
		}
		if !ok {
			// Another runner or a gateway callback got there first.
			continue
		}
		refunded++
		s.logger.Info("Payment auto-refunded",
			zap.String("payment_id", payment.ID),
			zap.String("booking_id", payment.BookingID),
			zap.Int64("amount", payment.Amount))
	}

	return refunded, nil
}

// GetPayment returns the payment or a NOT_FOUND error.
func (s *EscrowService) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domainErrors.NewNotFoundError(fmt.Sprintf("payment %s not found", id))
	}
	return payment, nil
}

func (s *EscrowService) confirmPayment(ctx context.Context, payment *entity.Payment) error {
	if payment.Status == entity.PaymentStatusConfirmed {
		return nil
	}

	now := s.clock.Now()
	ok, err := s.payments.UpdateStatusFrom(ctx, payment.ID, entity.PaymentStatusHeld, entity.PaymentStatusConfirmed, repository.PaymentStatusFields{
		ConfirmedAt: &now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}
	if !ok {
		current, lookupErr := s.payments.GetByID(ctx, payment.ID)
		if lookupErr != nil {
			return lookupErr
		}
		if current == nil {
			return domainErrors.NewNotFoundError(fmt.Sprintf("payment %s not found", payment.ID))
		}
		if current.Status == entity.PaymentStatusConfirmed {
			return nil
		}
		return domainErrors.NewInvalidStateError(payment.BookingID, fmt.Sprintf("payment is %s, cannot confirm", current.Status))
	}

	// A paid booking moves on to the provider's queue.
	now = s.clock.Now()
	if _, err := s.bookings.UpdateStatusFrom(ctx, payment.BookingID, entity.BookingStatusAwaitingPayment, entity.BookingStatusPending, repository.BookingStatusFields{
		UpdatedAt: now,
	}); err != nil {
		s.logger.Error("Failed to move booking out of awaiting_payment",
			zap.String("booking_id", payment.BookingID),
			zap.Error(err))
	}

	return nil
}

func (s *EscrowService) failPayment(ctx context.Context, payment *entity.Payment, code, message string) error {
	if payment.Status == entity.PaymentStatusFailed {
		return nil
	}

	now := s.clock.Now()
	ok, err := s.payments.UpdateStatusFrom(ctx, payment.ID, entity.PaymentStatusHeld, entity.PaymentStatusFailed, repository.PaymentStatusFields{
		FailureCode:    code,
		FailureMessage: message,
		UpdatedAt:      now,
	})
	if err != nil {
		return err
	}
	if !ok {
		current, lookupErr := s.payments.GetByID(ctx, payment.ID)
		if lookupErr != nil {
			return lookupErr
		}
		if current == nil {
			return domainErrors.NewNotFoundError(fmt.Sprintf("payment %s not found", payment.ID))
		}
		if current.Status == entity.PaymentStatusFailed {
			return nil
		}
		return domainErrors.NewInvalidStateError(payment.BookingID, fmt.Sprintf("payment is %s, cannot fail", current.Status))
	}

	s.logger.Warn("Payment failed",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", payment.BookingID),
		zap.String("failure_code", code))

	return nil
}

func (s *EscrowService) refund(ctx context.Context, payment *entity.Payment, reason string) error {
	if payment.Status != entity.PaymentStatusHeld && payment.Status != entity.PaymentStatusConfirmed {
		return domainErrors.NewInvalidStateError(payment.BookingID, fmt.Sprintf("payment is %s, refund requires held or confirmed", payment.Status))
	}

	now := s.clock.Now()
	ok, err := s.payments.UpdateStatusFrom(ctx, payment.ID, payment.Status, entity.PaymentStatusRefunded, repository.PaymentStatusFields{
		RefundReason: reason,
		RefundedAt:   &now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}
	if !ok {
		current, lookupErr := s.payments.GetByID(ctx, payment.ID)
		if lookupErr != nil {
			return lookupErr
		}
		if current != nil && current.Status == entity.PaymentStatusRefunded {
			return nil
		}
		return domainErrors.NewInvalidStateError(payment.BookingID, "payment changed state before refund was applied")
	}

	s.logger.Info("Payment refunded to customer",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", payment.BookingID),
		zap.Int64("amount", payment.Amount),
		zap.String("reason", reason))

	return nil
}

// commissionFor computes the platform's cut from the configured rate. Every
// commission in the payment path goes through here.
func (s *EscrowService) commissionFor(amount int64) int64 {
	return s.commissionRate.
		Mul(decimal.NewFromInt(amount)).
		Round(0).
		IntPart()
}

func (s *EscrowService) trustedRedirect(redirectURL string) bool {
	u, err := url.Parse(redirectURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range s.config.AllowedRedirectHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
