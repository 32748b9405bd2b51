package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the persistence model for an escrow payment attempt. A partial
// unique index (see database.Migrate) enforces at most one non-failed payment
// per booking.
type Payment struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	Attempt   int       `gorm:"not null;default:1" json:"attempt"`

	AmountCents         int64  `gorm:"column:amount_cents;not null" json:"amount_cents"`
	CommissionCents     int64  `gorm:"column:commission_cents;not null" json:"commission_cents"`
	ProviderAmountCents int64  `gorm:"column:provider_amount_cents;not null" json:"provider_amount_cents"`
	Currency            string `gorm:"size:3;default:'NGN'" json:"currency"`

	Status string `gorm:"size:50;not null;index" json:"status"`

	Gateway          string `gorm:"size:50;not null" json:"gateway"`
	GatewayReference string `gorm:"size:100;unique" json:"gateway_reference"`
	RedirectURL      string `gorm:"type:text" json:"redirect_url"`

	FailureCode    *string `gorm:"size:100" json:"failure_code,omitempty"`
	FailureMessage *string `json:"failure_message,omitempty"`
	RefundReason   *string `json:"refund_reason,omitempty"`

	HeldAt       *time.Time `json:"held_at,omitempty"`
	AutoRefundAt *time.Time `gorm:"index" json:"auto_refund_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
