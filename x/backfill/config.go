package backfill

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Block resolution modes for a sweep.
const (
	// BlockModeLatest proves state at the chain head minus the
	// confirmation margin.
	BlockModeLatest = "latest-confirmations"
	// BlockModeEpochEnd proves state at the last block whose timestamp
	// still falls inside the target epoch.
	BlockModeEpochEnd = "epoch-end"
)

// Campaign names one gauge to keep proven: the protocol layout to use,
// the gauge address, the voters whose slopes are proven alongside the
// gauge weight, and the first epoch the campaign covers.
type Campaign struct {
	Protocol   string   `mapstructure:"protocol" yaml:"protocol" json:"protocol"`
	Gauge      string   `mapstructure:"gauge" yaml:"gauge" json:"gauge"`
	Users      []string `mapstructure:"users" yaml:"users,omitempty" json:"users,omitempty"`
	StartEpoch uint64   `mapstructure:"start_epoch" yaml:"start_epoch" json:"start_epoch"`
}

// Validate checks the campaign fields.
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Protocol) == "" {
		return fmt.Errorf("campaign needs a protocol")
	}
	if !common.IsHexAddress(c.Gauge) {
		return fmt.Errorf("campaign %s: bad gauge address %q", c.Protocol, c.Gauge)
	}
	for _, u := range c.Users {
		if !common.IsHexAddress(u) {
			return fmt.Errorf("campaign %s/%s: bad user address %q", c.Protocol, c.Gauge, u)
		}
	}
	if c.StartEpoch == 0 {
		return fmt.Errorf("campaign %s/%s: missing start epoch", c.Protocol, c.Gauge)
	}
	return nil
}

// GaugeAddress returns the parsed gauge address. Call Validate first.
func (c Campaign) GaugeAddress() common.Address {
	return common.HexToAddress(c.Gauge)
}

// UserAddresses returns the parsed voter addresses.
func (c Campaign) UserAddresses() []common.Address {
	out := make([]common.Address, 0, len(c.Users))
	for _, u := range c.Users {
		out = append(out, common.HexToAddress(u))
	}
	return out
}

func (c Campaign) String() string {
	return c.Protocol + "/" + c.Gauge
}

// Config controls the backfill runner.
type Config struct {
	// Enabled turns the runner on. A disabled runner starts and stops
	// without sweeping.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// PollInterval is the time between sweeps.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// Concurrency bounds the campaigns swept in parallel.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// Confirmations is the head margin used in BlockModeLatest.
	Confirmations uint64 `mapstructure:"confirmations" yaml:"confirmations"`
	// CatchUpLimit caps the epochs filled per campaign per sweep.
	CatchUpLimit int `mapstructure:"catch_up_limit" yaml:"catch_up_limit"`
	// BlockMode selects how the proven block is resolved.
	BlockMode string `mapstructure:"block_mode" yaml:"block_mode"`
	// Campaigns are the gauges to keep proven.
	Campaigns []Campaign `mapstructure:"campaigns" yaml:"campaigns"`
}

// DefaultConfig returns a config with sensible defaults. Campaigns must
// be filled in by the operator.
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		PollInterval:  10 * time.Minute,
		Concurrency:   4,
		Confirmations: 64,
		CatchUpLimit:  12,
		BlockMode:     BlockModeLatest,
	}
}

// Validate checks the configuration. A disabled config is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.CatchUpLimit <= 0 {
		return fmt.Errorf("catch-up limit must be positive")
	}
	switch c.BlockMode {
	case BlockModeLatest, BlockModeEpochEnd:
	default:
		return fmt.Errorf("unknown block mode %q", c.BlockMode)
	}
	for _, campaign := range c.Campaigns {
		if err := campaign.Validate(); err != nil {
			return err
		}
	}
	return nil
}
