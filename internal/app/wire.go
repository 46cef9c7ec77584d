package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	s3blob "github.com/alanyoungcy/polyclaim/internal/blob/s3"
	"github.com/alanyoungcy/polyclaim/internal/chain"
	"github.com/alanyoungcy/polyclaim/internal/config"
	"github.com/alanyoungcy/polyclaim/internal/crypto"
	"github.com/alanyoungcy/polyclaim/internal/platform/polymarket"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
//
// Signer and Wallet are left unset when no key source is configured; the
// redeem mode treats that as a clean no-op run rather than a wiring error,
// so cron deployments without credentials exit zero.
type Dependencies struct {
	Data  *polymarket.DataClient
	Gamma *polymarket.GammaClient

	// Chain connection and signing key (redeem mode only).
	Chain  *chain.Client
	Signer *crypto.TxSigner
	Wallet common.Address

	// Archiver is set when an S3 bucket is configured (stats mode only).
	Archiver *s3blob.Archiver
}

// needsChain returns true for modes that require an RPC connection.
func needsChain(mode string) bool {
	return mode == "redeem"
}

// needsS3 returns true for modes that archive output to object storage.
func needsS3(mode string) bool {
	return mode == "stats"
}

// Wire constructs all concrete dependencies from the configuration and
// returns them together with a cleanup function to call on shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()
	mode := strings.ToLower(cfg.Mode)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Data:  polymarket.NewDataClient(cfg.Polymarket.DataHost),
		Gamma: polymarket.NewGammaClient(cfg.Polymarket.GammaHost),
	}

	// --- Chain and signer (only for modes that dispatch transactions) ---
	if needsChain(mode) {
		chainClient, err := chain.New(ctx, cfg.Chain.RPCURL, cfg.Chain.ChainID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: chain: %w", err)
		}
		closers = append(closers, func() { _ = chainClient.Close() })
		deps.Chain = chainClient

		keyHex, err := crypto.LoadKey(crypto.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		switch {
		case err == nil:
			signer, err := crypto.NewTxSigner(keyHex, cfg.Chain.ChainID)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: signer: %w", err)
			}
			deps.Signer = signer
			deps.Wallet = signer.Address()
		case cfg.Wallet.PrivateKey == "" && cfg.Wallet.EncryptedKeyPath == "":
			// No key source configured; the redeem mode no-ops.
			logger.Warn("no private key configured")
		default:
			cleanup()
			return nil, nil, fmt.Errorf("wire: load key: %w", err)
		}

		// A configured address overrides the signer-derived one; proxy
		// wallets hold positions at an address the key does not derive.
		if cfg.Wallet.Address != "" {
			deps.Wallet = common.HexToAddress(cfg.Wallet.Address)
		}
	}

	// --- S3 report archive (optional) ---
	if needsS3(mode) && cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		deps.Archiver = s3blob.NewArchiver(s3Client, cfg.S3.Prefix)
	}

	return deps, cleanup, nil
}
