package gateway

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/config"
	domainGateway "github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	paystackGateway "github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/gateway/paystack"
	stripeGateway "github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/gateway/stripe"
)

// Factory creates payment gateways based on the configured provider
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new gateway factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: cfg,
		logger: logger,
	}
}

// GetGateway returns the configured payment gateway implementation
func (f *Factory) GetGateway() (domainGateway.PaymentGateway, error) {
	switch f.config.Gateway.Provider {
	case "paystack":
		return f.createPaystackGateway()
	case "stripe":
		return f.createStripeGateway()
	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", f.config.Gateway.Provider)
	}
}

func (f *Factory) createPaystackGateway() (domainGateway.PaymentGateway, error) {
	if f.config.Gateway.Paystack.SecretKey == "" {
		return nil, fmt.Errorf("Paystack secret key not configured")
	}

	return paystackGateway.NewClient(
		f.config.Gateway.Paystack.SecretKey,
		f.config.Gateway.Paystack.BaseURL,
		f.config.Gateway.RequestTimeout,
		f.logger,
	), nil
}

func (f *Factory) createStripeGateway() (domainGateway.PaymentGateway, error) {
	if f.config.Gateway.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}

	return stripeGateway.NewGateway(
		f.config.Gateway.Stripe.SecretKey,
		f.config.Gateway.Stripe.WebhookSecret,
		f.config.Gateway.Stripe.SuccessURL,
		f.config.Gateway.Stripe.CancelURL,
		f.logger,
	), nil
}
