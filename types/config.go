package types

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config contains global configuration for the payflow workflow.
type Config struct {
	// RPCURL is the ledger RPC endpoint.
	RPCURL string `env:"PAYFLOW_RPC_URL" envDefault:"https://api.devnet.solana.com"`

	// BuilderURL is the transaction-building service endpoint.
	BuilderURL string `env:"PAYFLOW_BUILDER_URL"`

	// OrderStoreURL is the order-recording service endpoint.
	OrderStoreURL string `env:"PAYFLOW_ORDER_STORE_URL"`

	// PollInterval is the cadence of ledger lookups while a submitted
	// payment awaits finality.
	PollInterval time.Duration `env:"PAYFLOW_POLL_INTERVAL" envDefault:"1s"`

	// PollTimeout bounds how long the poller may run before the checkout
	// expires. Zero disables the bound; leaving it unbounded is an
	// explicit choice, not a default the caller can overlook.
	PollTimeout time.Duration `env:"PAYFLOW_POLL_TIMEOUT" envDefault:"0"`

	// HTTPTimeout applies to builder and order-store calls.
	HTTPTimeout time.Duration `env:"PAYFLOW_HTTP_TIMEOUT" envDefault:"30s"`

	// RecordAttempts bounds retries when persisting a fulfillment record.
	RecordAttempts uint `env:"PAYFLOW_RECORD_ATTEMPTS" envDefault:"3"`

	LogLevel      string `env:"PAYFLOW_LOG_LEVEL" envDefault:"info"`
	EnableMetrics bool   `env:"PAYFLOW_ENABLE_METRICS" envDefault:"false"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &PayflowError{
			Code:    ErrConfigError,
			Message: fmt.Sprintf("failed to parse environment: %v", err),
		}
	}
	return cfg, nil
}

// Normalize fills in zero values that have no meaningful zero semantics.
func (c *Config) Normalize() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.RecordAttempts == 0 {
		c.RecordAttempts = 3
	}
}
