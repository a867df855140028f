package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stake-dao/votemarket-relay/x/backfill"
	l1cfg "github.com/stake-dao/votemarket-relay/x/votemarket/l1"
)

// Config holds the complete relayer configuration
type Config struct {
	API      APIServerConfig `mapstructure:"api"      yaml:"api"`
	Metrics  MetricsConfig   `mapstructure:"metrics"  yaml:"metrics"`
	Log      LogConfig       `mapstructure:"log"      yaml:"log"`
	L1       l1cfg.Config    `mapstructure:"l1"       yaml:"l1"`
	Store    StoreConfig     `mapstructure:"store"    yaml:"store"`
	Oracle   OracleConfig    `mapstructure:"oracle"   yaml:"oracle"`
	Backfill backfill.Config `mapstructure:"backfill" yaml:"backfill"`
}

// APIServerConfig holds HTTP API server configuration
type APIServerConfig struct {
	ListenAddr        string        `mapstructure:"listen_addr"         yaml:"listen_addr"         env:"API_LISTEN_ADDR"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"        yaml:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"       yaml:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"        yaml:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"    yaml:"max_header_bytes"`
	EnableCORS        bool          `mapstructure:"enable_cors"         yaml:"enable_cors"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `mapstructure:"path"    yaml:"path"    env:"METRICS_PATH"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" env:"LOG_PRETTY"`
}

// StoreConfig holds the submission journal configuration. An empty path
// keeps the journal in memory.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path" env:"STORE_PATH"`
}

// OracleConfig points at the destination-chain verifier contract. Left
// empty, the calldata endpoint is disabled.
type OracleConfig struct {
	VerifierAddress string `mapstructure:"verifier_address" yaml:"verifier_address" env:"ORACLE_VERIFIER_ADDRESS"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	// optional .env next to the binary; ignore absence
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Fallback env aliases
	if strings.TrimSpace(cfg.L1.RPCEndpoint) == "" {
		if ep := strings.TrimSpace(os.Getenv("ETH_RPC_URL")); ep != "" {
			cfg.L1.RPCEndpoint = ep
		}
	}
	if strings.TrimSpace(cfg.Oracle.VerifierAddress) == "" {
		if addr := strings.TrimSpace(os.Getenv("ORACLE_VERIFIER_ADDRESS")); addr != "" {
			cfg.Oracle.VerifierAddress = addr
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.listen_addr", ":8081")
	v.SetDefault("api.read_header_timeout", "5s")
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "30s")
	v.SetDefault("api.idle_timeout", "120s")
	v.SetDefault("api.max_header_bytes", 1048576)
	v.SetDefault("api.enable_cors", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// L1 defaults
	v.SetDefault("l1.rpc_endpoint", "")
	v.SetDefault("l1.chain_id", 1)
	v.SetDefault("l1.request_timeout", "30s")
	v.SetDefault("l1.max_concurrency", 8)
	v.SetDefault("l1.retry.max_attempts", 3)
	v.SetDefault("l1.retry.backoff_base", "500ms")
	v.SetDefault("l1.retry.backoff_max", "8s")

	v.SetDefault("store.path", "")
	v.SetDefault("oracle.verifier_address", "")

	// Backfill defaults
	v.SetDefault("backfill.enabled", false)
	v.SetDefault("backfill.poll_interval", "10m")
	v.SetDefault("backfill.concurrency", 4)
	v.SetDefault("backfill.confirmations", 64)
	v.SetDefault("backfill.catch_up_limit", 12)
	v.SetDefault("backfill.block_mode", backfill.BlockModeLatest)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.L1.Validate(); err != nil {
		return err
	}
	if err := c.validateOracle(); err != nil {
		return err
	}
	return c.Backfill.Validate()
}

func (c *Config) validateAPI() error {
	if strings.TrimSpace(c.API.ListenAddr) == "" {
		return fmt.Errorf("api.listen_addr must not be empty")
	}
	if c.API.ReadTimeout <= 0 || c.API.WriteTimeout <= 0 {
		return fmt.Errorf("api timeouts must be positive")
	}
	return nil
}

func (c *Config) validateOracle() error {
	addr := strings.TrimSpace(c.Oracle.VerifierAddress)
	if addr == "" {
		return nil // oracle not configured
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("oracle.verifier_address %q is not a hex address", addr)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		API: APIServerConfig{
			ListenAddr:        ":8081",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
		L1:       l1cfg.DefaultConfig(),
		Store:    StoreConfig{Path: ""},
		Oracle:   OracleConfig{},
		Backfill: backfill.DefaultConfig(),
	}
}
