package gateway

import (
	"context"
	"time"
)

// PaymentGateway is the boundary to the external payment processor. The core
// treats the processor as opaque: it can create a redirect-based payment
// session for a reference, verify a session, and parse callback payloads.
type PaymentGateway interface {
	// CreateSession creates a payment session and returns the redirect target
	// the customer completes the charge on.
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)

	// VerifySession fetches the authoritative status of a session.
	VerifySession(ctx context.Context, reference string) (*SessionStatus, error)

	// ParseWebhook validates a callback payload's signature and normalizes it
	// into a WebhookEvent.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// Name returns the gateway name (paystack, stripe).
	Name() string
}

// CreateSessionRequest is a gateway-agnostic payment session request.
type CreateSessionRequest struct {
	// Reference is the internal payment reference; the gateway echoes it back
	// in verification and webhook payloads.
	Reference     string
	Amount        int64 // smallest currency unit
	Currency      string
	CustomerEmail string
	Description   string
	CallbackURL   string
}

// Session is the gateway's response to session creation.
type Session struct {
	SessionID   string
	Reference   string
	RedirectURL string
}

// SessionStatus is the result of verifying a session with the gateway.
type SessionStatus struct {
	Reference string
	Status    Status
	Amount    int64
	PaidAt    *time.Time
}

// WebhookEvent is a normalized gateway callback.
type WebhookEvent struct {
	EventType      string
	Reference      string
	Status         Status
	Amount         int64
	FailureCode    string
	FailureMessage string
}

// Status is the gateway-normalized outcome of a charge.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Error carries a gateway-specific failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
