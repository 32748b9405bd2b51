package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/clock"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
	domainErrors "github.com/TechBursterOrg/homehero-sub003/internal/domain/errors"
	"github.com/TechBursterOrg/homehero-sub003/internal/domain/repository"
)

// BookingServiceConfig carries the booking policy knobs.
type BookingServiceConfig struct {
	DuplicateWindow time.Duration
}

// BookingService owns creation and lifecycle transitions of bookings.
type BookingService struct {
	bookings       repository.BookingRepository
	payments       repository.PaymentRepository
	duplicateGuard repository.DuplicateGuard
	clock          clock.Clock
	logger         *zap.Logger
	config         BookingServiceConfig
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	duplicateGuard repository.DuplicateGuard,
	clk clock.Clock,
	logger *zap.Logger,
	config BookingServiceConfig,
) *BookingService {
	return &BookingService{
		bookings:       bookings,
		payments:       payments,
		duplicateGuard: duplicateGuard,
		clock:          clk,
		logger:         logger,
		config:         config,
	}
}

// CreateBookingInput are the customer-supplied booking fields.
type CreateBookingInput struct {
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	ProviderID    string
	ProviderName  string
	ProviderEmail string

	ServiceType     string
	Description     string
	ServiceLocation string
	Timeframe       string
	SpecialRequests string

	Budget string
}

// Create persists a new booking in awaiting_payment, normalizing the budget
// into a definite amount. Concurrent duplicate submissions inside the
// configured window are coalesced onto the existing booking or rejected.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*entity.Booking, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fingerprint := s.fingerprint(in)
	reserved, err := s.duplicateGuard.Reserve(ctx, fingerprint, s.config.DuplicateWindow)
	if err != nil {
		return nil, fmt.Errorf("duplicate guard: %w", err)
	}
	if !reserved {
		// A matching submission is in flight. Reuse its booking if it is
		// already persisted, otherwise reject so the client retries.
		cutoff := s.clock.Now().Add(-s.config.DuplicateWindow)
		existing, err := s.bookings.FindRecentDuplicate(ctx, in.CustomerID, in.ProviderID, in.ServiceType, cutoff)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		return nil, domainErrors.NewDuplicateRequestError(in.CustomerID, in.ProviderID)
	}

	now := s.clock.Now()
	booking := &entity.Booking{
		ID:              uuid.NewString(),
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ProviderID:      in.ProviderID,
		ProviderName:    in.ProviderName,
		ProviderEmail:   in.ProviderEmail,
		ServiceType:     in.ServiceType,
		Description:     in.Description,
		ServiceLocation: in.ServiceLocation,
		Timeframe:       in.Timeframe,
		SpecialRequests: in.SpecialRequests,
		Budget:          in.Budget,
		Amount:          NormalizeAmount(in.Budget),
		Status:          entity.BookingStatusAwaitingPayment,
		RequestedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		_ = s.duplicateGuard.Release(ctx, fingerprint)
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("customer_id", booking.CustomerID),
		zap.String("provider_id", booking.ProviderID),
		zap.String("service_type", booking.ServiceType),
		zap.Int64("amount", booking.Amount))

	return booking, nil
}

// GetByID returns the booking or a NOT_FOUND error.
func (s *BookingService) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domainErrors.NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}
	return booking, nil
}

// Accept moves a paid booking from pending to confirmed (provider action).
func (s *BookingService) Accept(ctx context.Context, id string) error {
	now := s.clock.Now()
	ok, err := s.bookings.UpdateStatusFrom(ctx, id, entity.BookingStatusPending, entity.BookingStatusConfirmed, repository.BookingStatusFields{
		AcceptedAt: &now,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return domainErrors.NewInvalidStateError(id, "booking is not pending, cannot accept")
	}
	return nil
}

// Complete moves a confirmed booking to completed. The transition is refused
// while the booking's payment is not confirmed or released.
func (s *BookingService) Complete(ctx context.Context, id string) error {
	payment, err := s.payments.GetActiveByBookingID(ctx, id)
	if err != nil {
		return err
	}
	if payment == nil || (payment.Status != entity.PaymentStatusConfirmed && payment.Status != entity.PaymentStatusReleased) {
		return domainErrors.NewInvalidStateError(id, "booking cannot complete until its payment is confirmed")
	}

	now := s.clock.Now()
	ok, err := s.bookings.UpdateStatusFrom(ctx, id, entity.BookingStatusConfirmed, entity.BookingStatusCompleted, repository.BookingStatusFields{
		CompletedAt: &now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return domainErrors.NewInvalidStateError(id, "booking is not confirmed, cannot complete")
	}
	return nil
}

// Cancel cancels a booking that has not been confirmed yet.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	now := s.clock.Now()
	for _, from := range []entity.BookingStatus{entity.BookingStatusAwaitingPayment, entity.BookingStatusPending} {
		ok, err := s.bookings.UpdateStatusFrom(ctx, id, from, entity.BookingStatusCancelled, repository.BookingStatusFields{
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return domainErrors.NewInvalidStateError(id, "booking cannot be cancelled from its current status")
}

func (s *BookingService) validate(in CreateBookingInput) error {
	switch {
	case in.CustomerID == "":
		return domainErrors.NewValidationError("customer id is required")
	case in.CustomerEmail == "":
		return domainErrors.NewValidationError("customer email is required")
	case in.ProviderID == "":
		return domainErrors.NewValidationError("provider id is required")
	case in.ServiceLocation == "":
		return domainErrors.NewValidationError("service location is required")
	case !entity.ValidServiceType(in.ServiceType):
		return domainErrors.NewValidationError(fmt.Sprintf("unknown service type %q", in.ServiceType))
	}
	return nil
}

func (s *BookingService) fingerprint(in CreateBookingInput) string {
	return strings.Join([]string{in.CustomerID, in.ProviderID, in.ServiceType}, ":")
}
