package l1

import (
	"errors"
	"time"
)

// Config holds Ethereum L1 read configuration.
type Config struct {
	// RPC endpoint to an Ethereum node. Historical eth_getProof calls
	// need archive state.
	RPCEndpoint string `mapstructure:"rpc_endpoint" yaml:"rpc_endpoint" env:"ETH_RPC_URL"`

	// ChainID of the endpoint, checked once on dial when set.
	ChainID uint64 `mapstructure:"chain_id" yaml:"chain_id"`

	// RequestTimeout bounds every single RPC call.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// MaxConcurrency bounds in-flight RPC calls across all proof
	// requests, to stay inside provider rate limits. Zero disables the
	// bound.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig bounds the retry loop for transient endpoint failures.
type RetryConfig struct {
	// MaxAttempts counts the first try.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// BackoffBase doubles per attempt up to BackoffMax.
	BackoffBase time.Duration `mapstructure:"backoff_base" yaml:"backoff_base"`
	BackoffMax  time.Duration `mapstructure:"backoff_max" yaml:"backoff_max"`
}

func DefaultConfig() Config {
	return Config{
		RPCEndpoint:    "http://localhost:8545",
		ChainID:        1,
		RequestTimeout: 30 * time.Second,
		MaxConcurrency: 8,
		Retry: RetryConfig{
			MaxAttempts: 3,
			BackoffBase: 500 * time.Millisecond,
			BackoffMax:  8 * time.Second,
		},
	}
}

func (c Config) Validate() error {
	if c.RPCEndpoint == "" {
		return errors.New("l1: rpc_endpoint is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("l1: request_timeout must be positive")
	}
	if c.MaxConcurrency < 0 {
		return errors.New("l1: max_concurrency must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("l1: retry.max_attempts must be at least 1")
	}
	if c.Retry.BackoffBase <= 0 {
		return errors.New("l1: retry.backoff_base must be positive")
	}
	return nil
}
