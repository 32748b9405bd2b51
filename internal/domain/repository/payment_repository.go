package repository

import (
	"context"
	"errors"
	"time"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
)

// ErrDuplicateActivePayment is returned by Create when a non-failed payment
// already exists for the booking (partial unique index violation).
var ErrDuplicateActivePayment = errors.New("an active payment already exists for this booking")

// PaymentRepository owns persistence of escrow payment attempts.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByGatewayReference(ctx context.Context, reference string) (*entity.Payment, error)

	// GetActiveByBookingID returns the booking's non-failed payment, or nil
	// when none exists.
	GetActiveByBookingID(ctx context.Context, bookingID string) (*entity.Payment, error)

	// CountAttempts returns the number of payment attempts recorded for the
	// booking, failed ones included.
	CountAttempts(ctx context.Context, bookingID string) (int, error)

	// UpdateStatusFrom applies a compare-and-set status transition, returning
	// true when this caller won the transition.
	UpdateStatusFrom(ctx context.Context, id string, fromStatus, toStatus entity.PaymentStatus, fields PaymentStatusFields) (bool, error)

	// ListExpiredHeld returns up to limit held payments whose auto-refund
	// deadline is at or before now.
	ListExpiredHeld(ctx context.Context, now time.Time, limit int) ([]*entity.Payment, error)
}

// PaymentStatusFields are the columns a status transition may set alongside
// the status itself.
type PaymentStatusFields struct {
	FailureCode    string
	FailureMessage string
	RefundReason   string
	ConfirmedAt    *time.Time
	ReleasedAt     *time.Time
	RefundedAt     *time.Time
	UpdatedAt      time.Time
}
