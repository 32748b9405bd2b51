package stripe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
)

// Gateway is the Stripe Checkout implementation of the PaymentGateway
// interface. The canonical reference it reports is the checkout session id.
type Gateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *zap.Logger
}

// NewGateway creates a new Stripe gateway.
func NewGateway(secretKey, webhookSecret, successURL, cancelURL string, logger *zap.Logger) *Gateway {
	stripe.Key = secretKey

	return &Gateway{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger,
	}
}

// Name returns the gateway name
func (g *Gateway) Name() string {
	return "stripe"
}

// CreateSession creates a Checkout Session in payment mode and returns the
// hosted payment page URL.
func (g *Gateway) CreateSession(ctx context.Context, req *gateway.CreateSessionRequest) (*gateway.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.Reference),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		g.logger.Error("Error creating checkout session",
			zap.String("reference", req.Reference),
			zap.Error(err))
		return nil, &gateway.Error{
			Code:    "CHECKOUT_SESSION_ERROR",
			Message: "failed to create checkout session",
			Details: err.Error(),
		}
	}

	return &gateway.Session{
		SessionID:   s.ID,
		Reference:   s.ID,
		RedirectURL: s.URL,
	}, nil
}

// VerifySession retrieves the checkout session and reports its payment
// status.
func (g *Gateway) VerifySession(ctx context.Context, reference string) (*gateway.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := checkoutsession.Get(reference, params)
	if err != nil {
		return nil, &gateway.Error{
			Code:    "SESSION_LOOKUP_ERROR",
			Message: "failed to retrieve checkout session",
			Details: err.Error(),
		}
	}

	status := &gateway.SessionStatus{
		Reference: s.ID,
		Amount:    s.AmountTotal,
	}

	switch s.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid:
		status.Status = gateway.StatusSuccess
		paidAt := time.Unix(s.Created, 0).UTC()
		status.PaidAt = &paidAt
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		if s.Status == stripe.CheckoutSessionStatusExpired {
			status.Status = gateway.StatusFailed
		} else {
			status.Status = gateway.StatusPending
		}
	default:
		status.Status = gateway.StatusPending
	}

	return status, nil
}

// ParseWebhook verifies the Stripe-Signature header and normalizes checkout
// session events.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, &gateway.Error{
			Code:    "INVALID_SIGNATURE",
			Message: "webhook signature verification failed",
			Details: err.Error(),
		}
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, &gateway.Error{
			Code:    "PARSE_ERROR",
			Message: "failed to parse checkout session from event",
			Details: err.Error(),
		}
	}

	normalized := &gateway.WebhookEvent{
		EventType: string(event.Type),
		Reference: session.ID,
		Amount:    session.AmountTotal,
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			normalized.Status = gateway.StatusSuccess
		} else {
			normalized.Status = gateway.StatusPending
		}
	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		normalized.Status = gateway.StatusFailed
		normalized.FailureCode = string(event.Type)
	default:
		normalized.Status = gateway.StatusPending
	}

	return normalized, nil
}
