// Command polyclaim redeems settled Polymarket positions and computes
// trade statistics. It loads configuration, applies command-line
// overrides, wires dependencies, and runs one cycle of the selected mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanyoungcy/polyclaim/internal/app"
	"github.com/alanyoungcy/polyclaim/internal/config"
	"github.com/alanyoungcy/polyclaim/internal/crypto"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	mode := flag.String("mode", "", "operating mode: redeem or stats (overrides config)")
	user := flag.String("user", "", "wallet address for stats mode (overrides config)")
	winMode := flag.String("win-mode", "", "win/loss policy: net_position or ever_bought")
	maxFills := flag.Int("max-fills", -1, "cap on fills fetched in stats mode (0 = unlimited)")
	from := flag.String("from", "", "window start: epoch seconds or YYYY-MM-DD")
	to := flag.String("to", "", "window end: epoch seconds or YYYY-MM-DD")
	out := flag.String("out", "", "path for the JSON stats report")
	mtm := flag.Bool("mtm", false, "value unresolved markets at current prices")
	encryptKey := flag.String("encrypt-key", "", "encrypt the configured private key to this path and exit")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Command-line flags override both the file and the environment.
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *user != "" {
		cfg.Stats.User = *user
	}
	if *winMode != "" {
		cfg.Stats.WinMode = *winMode
	}
	if *maxFills >= 0 {
		cfg.Stats.MaxFills = *maxFills
	}
	if *from != "" {
		cfg.Stats.From = *from
	}
	if *to != "" {
		cfg.Stats.To = *to
	}
	if *out != "" {
		cfg.Stats.OutputPath = *out
	}
	if *mtm {
		cfg.Stats.MarkToMarket = true
	}

	// One-shot utility: write the encrypted key file and exit, so the raw
	// key can be dropped from the environment afterwards.
	if *encryptKey != "" {
		if err := writeEncryptedKey(cfg, *encryptKey); err != nil {
			logger.Error("failed to encrypt key", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("encrypted key written",
			slog.String("path", *encryptKey),
			slog.String("hint", "set wallet.encrypted_key_path and remove the raw key"),
		)
		return
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("polyclaim starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("polyclaim stopped")
}

// writeEncryptedKey encrypts the configured raw private key with the
// configured password and writes the JSON blob to path.
func writeEncryptedKey(cfg *config.Config, path string) error {
	if cfg.Wallet.PrivateKey == "" {
		return errors.New("wallet private key not configured (set wallet.private_key or POLYCLAIM_WALLET_PRIVATE_KEY)")
	}
	if cfg.Wallet.KeyPassword == "" {
		return errors.New("key password not configured (set wallet.key_password or POLYCLAIM_WALLET_KEY_PASSWORD)")
	}

	blob, err := crypto.EncryptKey(cfg.Wallet.PrivateKey, cfg.Wallet.KeyPassword)
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o600)
}
