package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-dao/votemarket-relay/x/backfill"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  pretty: true

api:
  listen_addr: ":9090"
  enable_cors: true

metrics:
  enabled: false

l1:
  rpc_endpoint: "https://eth.example.org"
  chain_id: 1
  request_timeout: 20s
  max_concurrency: 4

store:
  path: "/var/lib/relayer/journal"

oracle:
  verifier_address: "0x348d1bD2a18C9A93eb9AB8E5F55852da3036E225"

backfill:
  enabled: true
  poll_interval: 5m
  concurrency: 2
  confirmations: 32
  catch_up_limit: 6
  block_mode: epoch-end
  campaigns:
    - protocol: curve
      gauge: "0x26F7786de3E6D9Bd37Fcf47BE6F2bC455a21b74A"
      users:
        - "0xa219712cc2AAa5Aa98cCF2a7ba055231f1752323"
      start_epoch: 1731542400
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, ":9090", cfg.API.ListenAddr)
	assert.True(t, cfg.API.EnableCORS)
	assert.Equal(t, 5*time.Second, cfg.API.ReadHeaderTimeout)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	assert.Equal(t, "https://eth.example.org", cfg.L1.RPCEndpoint)
	assert.Equal(t, 20*time.Second, cfg.L1.RequestTimeout)
	assert.Equal(t, 4, cfg.L1.MaxConcurrency)
	assert.Equal(t, 3, cfg.L1.Retry.MaxAttempts)

	assert.Equal(t, "/var/lib/relayer/journal", cfg.Store.Path)
	assert.Equal(t, "0x348d1bD2a18C9A93eb9AB8E5F55852da3036E225", cfg.Oracle.VerifierAddress)

	require.True(t, cfg.Backfill.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Backfill.PollInterval)
	assert.Equal(t, backfill.BlockModeEpochEnd, cfg.Backfill.BlockMode)
	require.Len(t, cfg.Backfill.Campaigns, 1)
	campaign := cfg.Backfill.Campaigns[0]
	assert.Equal(t, "curve", campaign.Protocol)
	assert.Equal(t, uint64(1731542400), campaign.StartEpoch)
	require.Len(t, campaign.Users, 1)
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "https://mainnet.example.org")

	path := writeConfig(t, `
log:
  level: info
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mainnet.example.org", cfg.L1.RPCEndpoint)
}

func TestLoadMissingEndpoint(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "")

	path := writeConfig(t, `
log:
  level: info
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_endpoint")
}

func TestLoadBadOracleAddress(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "")

	path := writeConfig(t, `
l1:
  rpc_endpoint: "https://eth.example.org"
oracle:
  verifier_address: "not-an-address"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifier_address")
}

func TestLoadBadBackfill(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "")

	path := writeConfig(t, `
l1:
  rpc_endpoint: "https://eth.example.org"
backfill:
  enabled: true
  block_mode: sideways
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block mode")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8081", cfg.API.ListenAddr)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Backfill.Enabled)
}
