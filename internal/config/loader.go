package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYCLAIM_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing file is not an error: every field has a default or an
// environment override, and cron deployments often run without a TOML file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, err
			}
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYCLAIM_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "POLYMARKET_PRIVATE_KEY") // compatibility alias
	setStr(&cfg.Wallet.PrivateKey, "POLYCLAIM_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "POLYCLAIM_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "POLYCLAIM_WALLET_KEY_PASSWORD")
	setStr(&cfg.Wallet.Address, "PM_ADDRESS") // compatibility alias
	setStr(&cfg.Wallet.Address, "POLYCLAIM_WALLET_ADDRESS")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.DataHost, "POLYCLAIM_POLYMARKET_DATA_HOST")
	setStr(&cfg.Polymarket.GammaHost, "POLYCLAIM_POLYMARKET_GAMMA_HOST")

	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "POLYCLAIM_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "POLYCLAIM_CHAIN_CHAIN_ID")
	setDuration(&cfg.Chain.RPCTimeout, "POLYCLAIM_CHAIN_RPC_TIMEOUT")

	// ── Redeem ──
	setInt(&cfg.Redeem.PageSize, "POLYCLAIM_REDEEM_PAGE_SIZE")
	setBool(&cfg.Redeem.IncludeLost, "POLYCLAIM_REDEEM_INCLUDE_LOST")
	setBool(&cfg.Redeem.Strict, "POLYCLAIM_REDEEM_STRICT")
	setDuration(&cfg.Redeem.Pace, "POLYCLAIM_REDEEM_PACE")
	setUint64(&cfg.Redeem.GasCeiling, "POLYCLAIM_REDEEM_GAS_CEILING")
	setInt(&cfg.Redeem.GasBufferPct, "POLYCLAIM_REDEEM_GAS_BUFFER_PCT")
	setDuration(&cfg.Redeem.ConfirmTimeout, "POLYCLAIM_REDEEM_CONFIRM_TIMEOUT")
	setDuration(&cfg.Redeem.RunTimeout, "POLYCLAIM_REDEEM_RUN_TIMEOUT")
	setStr(&cfg.Redeem.OwnerSlot, "POLYCLAIM_REDEEM_OWNER_SLOT")

	// RUN_TIMEOUT_SECONDS predates the duration-style variables and is kept
	// for existing cron entries.
	if v := os.Getenv("RUN_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Redeem.RunTimeout.Duration = time.Duration(n) * time.Second
		}
	}

	// ── Stats ──
	setStr(&cfg.Stats.User, "POLYCLAIM_STATS_USER")
	setInt(&cfg.Stats.PageSize, "POLYCLAIM_STATS_PAGE_SIZE")
	setInt(&cfg.Stats.MaxFills, "POLYCLAIM_STATS_MAX_FILLS")
	setStr(&cfg.Stats.WinMode, "POLYCLAIM_STATS_WIN_MODE")
	setBool(&cfg.Stats.MarkToMarket, "POLYCLAIM_STATS_MARK_TO_MARKET")
	setInt(&cfg.Stats.ProgressEvery, "POLYCLAIM_STATS_PROGRESS_EVERY")
	setStr(&cfg.Stats.OutputPath, "POLYCLAIM_STATS_OUTPUT_PATH")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "POLYCLAIM_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYCLAIM_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYCLAIM_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYCLAIM_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYCLAIM_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYCLAIM_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYCLAIM_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "POLYCLAIM_S3_PREFIX")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYCLAIM_MODE")
	setStr(&cfg.LogLevel, "POLYCLAIM_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
