package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "redeem", cfg.Mode)
	assert.Equal(t, int64(137), cfg.Chain.ChainID)
	assert.Equal(t, 3*time.Second, cfg.Redeem.Pace.Duration)
	assert.Equal(t, uint64(500_000), cfg.Redeem.GasCeiling)
	assert.Equal(t, "net_position", cfg.Stats.WinMode)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "yolo"
	cfg.Chain.RPCURL = ""
	cfg.Redeem.PageSize = 0
	cfg.Stats.WinMode = "sometimes"
	cfg.Wallet.Address = "not-an-address"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "rpc_url")
	assert.Contains(t, err.Error(), "page_size")
	assert.Contains(t, err.Error(), "win_mode")
	assert.Contains(t, err.Error(), "not a valid hex address")
}

func TestValidateOwnerSlot(t *testing.T) {
	cfg := Defaults()
	cfg.Redeem.OwnerSlot = "0x1234"
	require.Error(t, cfg.Validate())

	cfg.Redeem.OwnerSlot = "0x0000000000000000000000000000000000000000000000000000000000000000"
	require.NoError(t, cfg.Validate())
}

func TestValidateDoesNotRequireCredentials(t *testing.T) {
	// A scheduler deployment without secrets must still validate; the
	// redeem mode no-ops at runtime instead.
	cfg := Defaults()
	cfg.Wallet.PrivateKey = ""
	cfg.Wallet.Address = ""
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Polymarket.DataHost, cfg.Polymarket.DataHost)
}

func TestLoadTOMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
mode = "stats"
log_level = "debug"

[redeem]
pace = "5s"
gas_ceiling = 750000

[stats]
win_mode = "ever_bought"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("POLYCLAIM_CHAIN_RPC_URL", "https://rpc.example.org")
	t.Setenv("POLYCLAIM_REDEEM_GAS_CEILING", "900000")
	t.Setenv("POLYCLAIM_STATS_MAX_FILLS", "1234")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "stats", cfg.Mode)
	assert.Equal(t, 5*time.Second, cfg.Redeem.Pace.Duration)
	assert.Equal(t, "ever_bought", cfg.Stats.WinMode)

	// Environment wins over the file.
	assert.Equal(t, "https://rpc.example.org", cfg.Chain.RPCURL)
	assert.Equal(t, uint64(900_000), cfg.Redeem.GasCeiling)
	assert.Equal(t, 1234, cfg.Stats.MaxFills)
}

func TestCompatibilityEnvAliases(t *testing.T) {
	t.Setenv("POLYMARKET_PRIVATE_KEY", "0xabc123")
	t.Setenv("PM_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("RUN_TIMEOUT_SECONDS", "90")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", cfg.Wallet.PrivateKey)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Wallet.Address)
	assert.Equal(t, 90*time.Second, cfg.Redeem.RunTimeout.Duration)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "supersecret"
	cfg.Wallet.KeyPassword = "hunter2"
	cfg.S3.AccessKey = "AKIA123"
	cfg.S3.SecretKey = "s3secret"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Wallet.PrivateKey)
	assert.Equal(t, "***", red.Wallet.KeyPassword)
	assert.Equal(t, "***", red.S3.AccessKey)
	assert.Equal(t, "***", red.S3.SecretKey)

	// The original is untouched.
	assert.Equal(t, "supersecret", cfg.Wallet.PrivateKey)

	// Empty secrets stay empty rather than hinting at a value.
	empty := Defaults()
	assert.Empty(t, RedactedConfig(&empty).Wallet.PrivateKey)
}
