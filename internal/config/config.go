// Package config defines the top-level configuration for polyclaim and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYCLAIM_* environment
// variables.
type Config struct {
	Wallet     WalletConfig     `toml:"wallet"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Chain      ChainConfig      `toml:"chain"`
	Redeem     RedeemConfig     `toml:"redeem"`
	Stats      StatsConfig      `toml:"stats"`
	S3         S3Config         `toml:"s3"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// WalletConfig holds the signing key source and the position-holding
// wallet address (which may differ from the signer for proxy wallets).
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
	Address          string `toml:"address"`
}

// PolymarketConfig holds the REST API endpoints.
type PolymarketConfig struct {
	DataHost  string `toml:"data_host"`
	GammaHost string `toml:"gamma_host"`
}

// ChainConfig holds Polygon RPC parameters.
type ChainConfig struct {
	RPCURL     string   `toml:"rpc_url"`
	ChainID    int64    `toml:"chain_id"`
	RPCTimeout duration `toml:"rpc_timeout"`
}

// RedeemConfig holds redemption-cycle parameters.
type RedeemConfig struct {
	// PageSize is the positions-API page size.
	PageSize int `toml:"page_size"`

	// IncludeLost extends redemption to lost positions; they pay nothing
	// but unlock wallet state.
	IncludeLost bool `toml:"include_lost"`

	// Strict aborts the cycle on an ambiguous wallet topology instead of
	// attempting a best-effort direct call.
	Strict bool `toml:"strict"`

	// Pace is the delay inserted between sequential redemptions so a
	// submitted nonce propagates before the next send.
	Pace duration `toml:"pace"`

	// GasCeiling is the fixed gas limit used when estimation fails.
	GasCeiling uint64 `toml:"gas_ceiling"`

	// GasBufferPct is the percentage added on top of a successful estimate.
	GasBufferPct int `toml:"gas_buffer_pct"`

	// ConfirmTimeout bounds the wait for a transaction receipt.
	ConfirmTimeout duration `toml:"confirm_timeout"`

	// RunTimeout is the hard wall-clock deadline for one cycle, so an
	// external scheduler never accumulates overlapping runs.
	RunTimeout duration `toml:"run_timeout"`

	// OwnerSlot overrides the well-known storage slot holding the owner
	// contract address, as a 0x-prefixed 32-byte hex string. The default
	// follows the current wallet-implementation convention.
	OwnerSlot string `toml:"owner_slot"`
}

// StatsConfig holds statistics-run parameters. User, time bounds, and the
// output path are typically supplied as command-line flags instead.
type StatsConfig struct {
	User          string `toml:"user"`
	PageSize      int    `toml:"page_size"`
	MaxFills      int    `toml:"max_fills"` // 0 = unlimited
	WinMode       string `toml:"win_mode"`
	MarkToMarket  bool   `toml:"mark_to_market"`
	ProgressEvery int    `toml:"progress_every"` // 0 = silent
	OutputPath    string `toml:"output_path"`
	From          string `toml:"from"` // epoch seconds or calendar string
	To            string `toml:"to"`
}

// S3Config holds optional S3-compatible storage for archiving statistics
// reports. Disabled when Bucket is empty.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			DataHost:  "https://data-api.polymarket.com",
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Chain: ChainConfig{
			RPCURL:     "https://polygon-rpc.com",
			ChainID:    137,
			RPCTimeout: duration{10 * time.Second},
		},
		Redeem: RedeemConfig{
			PageSize:       50,
			IncludeLost:    false,
			Strict:         false,
			Pace:           duration{3 * time.Second},
			GasCeiling:     500_000,
			GasBufferPct:   30,
			ConfirmTimeout: duration{2 * time.Minute},
			RunTimeout:     duration{3 * time.Minute},
		},
		Stats: StatsConfig{
			PageSize:      200,
			WinMode:       "net_position",
			ProgressEvery: 100,
		},
		Mode:     "redeem",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"redeem": true,
	"stats":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid values and returns a
// combined error describing every problem found. Credential presence is
// deliberately NOT validated here: a missing key ends the redeem cycle
// cleanly at runtime rather than failing startup, so an external scheduler
// does not see spurious non-zero exits.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: redeem, stats)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}
	if c.Wallet.Address != "" && !common.IsHexAddress(c.Wallet.Address) {
		errs = append(errs, fmt.Sprintf("wallet: address %q is not a valid hex address", c.Wallet.Address))
	}

	if c.Polymarket.DataHost == "" {
		errs = append(errs, "polymarket: data_host must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	if c.Chain.RPCURL == "" {
		errs = append(errs, "chain: rpc_url must not be empty")
	}
	if c.Chain.ChainID <= 0 {
		errs = append(errs, "chain: chain_id must be positive")
	}

	if c.Redeem.PageSize < 1 {
		errs = append(errs, "redeem: page_size must be >= 1")
	}
	if c.Redeem.GasCeiling < 21_000 {
		errs = append(errs, "redeem: gas_ceiling must cover at least a base transaction (21000)")
	}
	if c.Redeem.GasBufferPct < 0 {
		errs = append(errs, "redeem: gas_buffer_pct must be >= 0")
	}
	if c.Redeem.Pace.Duration < 0 {
		errs = append(errs, "redeem: pace must be >= 0")
	}
	if c.Redeem.RunTimeout.Duration <= 0 {
		errs = append(errs, "redeem: run_timeout must be positive")
	}
	if c.Redeem.OwnerSlot != "" {
		s := strings.TrimPrefix(c.Redeem.OwnerSlot, "0x")
		if len(s) != 64 {
			errs = append(errs, "redeem: owner_slot must be a 32-byte hex string")
		}
	}

	if c.Stats.PageSize < 1 {
		errs = append(errs, "stats: page_size must be >= 1")
	}
	if c.Stats.MaxFills < 0 {
		errs = append(errs, "stats: max_fills must be >= 0")
	}
	switch c.Stats.WinMode {
	case "net_position", "ever_bought":
	default:
		errs = append(errs, fmt.Sprintf("stats: win_mode must be net_position or ever_bought, got %q", c.Stats.WinMode))
	}

	if c.S3.Bucket != "" && c.S3.Region == "" {
		errs = append(errs, "s3: region must not be empty when a bucket is configured")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
