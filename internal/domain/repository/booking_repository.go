package repository

import (
	"context"
	"time"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/entity"
)

// BookingRepository owns persistence of booking records.
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id string) (*entity.Booking, error)

	// UpdateStatusFrom applies a compare-and-set status transition. It returns
	// true when the row was in fromStatus and has been moved to toStatus, and
	// false when another writer won the race. Non-nil timestamps in fields are
	// written together with the transition.
	UpdateStatusFrom(ctx context.Context, id string, fromStatus, toStatus entity.BookingStatus, fields BookingStatusFields) (bool, error)

	// FindRecentDuplicate returns an awaiting-payment booking with the same
	// customer, provider and service type requested after cutoff, if any.
	FindRecentDuplicate(ctx context.Context, customerID, providerID, serviceType string, cutoff time.Time) (*entity.Booking, error)
}

// BookingStatusFields are the timestamps a status transition may set.
type BookingStatusFields struct {
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}
