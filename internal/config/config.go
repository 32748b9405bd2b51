package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Log      LogConfig      `yaml:"log"`
	JWT      JWTConfig      `yaml:"jwt"`
}

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/homehero.yaml"
	}

	// Ensure absolute path
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Currency == "" {
		c.Service.Currency = "NGN"
	}
	if c.Service.CommissionRate == 0 {
		c.Service.CommissionRate = defaultCommissionRate
	}
	if c.Service.AutoRefundWindow == 0 {
		c.Service.AutoRefundWindow = defaultAutoRefundWindow
	}
	if c.Service.RefundSweepInterval == 0 {
		c.Service.RefundSweepInterval = defaultRefundSweepInterval
	}
	if c.Service.RefundSweepBatchSize == 0 {
		c.Service.RefundSweepBatchSize = defaultRefundSweepBatchSize
	}
	if c.Service.DuplicateWindow == 0 {
		c.Service.DuplicateWindow = defaultDuplicateWindow
	}
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = defaultGatewayTimeout
	}
	if c.Gateway.Provider == "" {
		c.Gateway.Provider = "paystack"
	}
}

func (c *Config) validate() error {
	if c.Service.CommissionRate < 0 || c.Service.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0, 1), got %v", c.Service.CommissionRate)
	}
	if c.Service.AutoRefundWindow <= 0 {
		return fmt.Errorf("auto_refund_window must be positive")
	}
	if len(c.Gateway.AllowedRedirectHosts) == 0 {
		return fmt.Errorf("gateway.allowed_redirect_hosts must not be empty")
	}
	return nil
}
