package entity

import "time"

// Booking is a customer's request for a provider's service. It is created in
// StatusAwaitingPayment and only leaves that status through payment
// confirmation or an explicit lifecycle action.
type Booking struct {
	ID string `json:"id"`

	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	ProviderID    string `json:"provider_id"`
	ProviderName  string `json:"provider_name"`
	ProviderEmail string `json:"provider_email"`

	ServiceType     string `json:"service_type"`
	Description     string `json:"description"`
	ServiceLocation string `json:"service_location"`
	Timeframe       string `json:"timeframe"`
	SpecialRequests string `json:"special_requests"`

	// Budget is the customer's free-text budget as entered. Amount is the
	// normalized value in the smallest currency unit and is what the payment
	// is created from.
	Budget string `json:"budget"`
	Amount int64  `json:"amount"`

	Status BookingStatus `json:"status"`

	RequestedAt time.Time  `json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type BookingStatus string

const (
	BookingStatusAwaitingPayment BookingStatus = "awaiting_payment"
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
)

// ServiceTypes is the controlled vocabulary for Booking.ServiceType.
var ServiceTypes = []string{
	"cleaning",
	"plumbing",
	"electrical",
	"carpentry",
	"painting",
	"gardening",
	"appliance_repair",
	"moving",
	"other",
}

// ValidServiceType reports whether t is in the controlled vocabulary.
func ValidServiceType(t string) bool {
	for _, s := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}
