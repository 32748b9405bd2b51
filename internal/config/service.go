package config

import "time"

// Defaults for the escrow policy knobs. All of them are overridable from the
// config file; the commission rate here is the single authoritative value and
// must not be duplicated anywhere else in the payment path.
const (
	defaultCommissionRate       = 0.15
	defaultAutoRefundWindow     = 72 * time.Hour
	defaultRefundSweepInterval  = 5 * time.Minute
	defaultRefundSweepBatchSize = 100
	defaultDuplicateWindow      = 30 * time.Second
	defaultGatewayTimeout       = 15 * time.Second
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`

	// Escrow policy
	Currency             string        `yaml:"currency"`
	CommissionRate       float64       `yaml:"commission_rate"`
	AutoRefundWindow     time.Duration `yaml:"auto_refund_window"`
	RefundSweepInterval  time.Duration `yaml:"refund_sweep_interval"`
	RefundSweepBatchSize int           `yaml:"refund_sweep_batch_size"`
	DuplicateWindow      time.Duration `yaml:"duplicate_window"`
}

type GatewayConfig struct {
	// Provider selects the active gateway implementation: paystack or stripe.
	Provider             string        `yaml:"provider"`
	AllowedRedirectHosts []string      `yaml:"allowed_redirect_hosts"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	CallbackBaseURL      string        `yaml:"callback_base_url"`

	Paystack PaystackConfig `yaml:"paystack"`
	Stripe   StripeConfig   `yaml:"stripe"`
}

type PaystackConfig struct {
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}
