package entity

import "time"

// Payment is the escrow record attached to a booking. Amounts are integers in
// the smallest currency unit. Commission + ProviderAmount == Amount holds for
// every status.
type Payment struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`

	// Attempt counts initialization attempts for the booking. A failed attempt
	// is retained for audit; at most one non-failed payment exists per booking.
	Attempt int `json:"attempt"`

	Amount         int64  `json:"amount"`
	Commission     int64  `json:"commission"`
	ProviderAmount int64  `json:"provider_amount"`
	Currency       string `json:"currency"`

	Status PaymentStatus `json:"status"`

	Gateway          string `json:"gateway"`
	GatewayReference string `json:"gateway_reference"`
	RedirectURL      string `json:"redirect_url"`

	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
	RefundReason   string `json:"refund_reason,omitempty"`

	HeldAt       *time.Time `json:"held_at,omitempty"`
	AutoRefundAt *time.Time `json:"auto_refund_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentStatusHeld      PaymentStatus = "held"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusReleased  PaymentStatus = "released"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Terminal reports whether no outbound transition is defined for the status.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusReleased, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}
