package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the persistence model for a booking record.
type Booking struct {
	ID uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`

	CustomerID    string `gorm:"size:64;not null;index:idx_bookings_parties" json:"customer_id"`
	CustomerName  string `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail string `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string `gorm:"size:32" json:"customer_phone"`

	ProviderID    string `gorm:"size:64;not null;index:idx_bookings_parties" json:"provider_id"`
	ProviderName  string `gorm:"size:255;not null" json:"provider_name"`
	ProviderEmail string `gorm:"size:255" json:"provider_email"`

	ServiceType     string `gorm:"size:50;not null" json:"service_type"`
	Description     string `gorm:"type:text" json:"description"`
	ServiceLocation string `gorm:"type:text" json:"service_location"`
	Timeframe       string `gorm:"size:100" json:"timeframe"`
	SpecialRequests string `gorm:"type:text" json:"special_requests"`

	Budget string `gorm:"size:100" json:"budget"`
	Amount int64  `gorm:"not null" json:"amount"`

	Status string `gorm:"size:50;not null;index:idx_bookings_parties" json:"status"`

	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:now()" json:"updated_at"`

	// Relations
	Payments []Payment `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}
