package redeem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// PositionSource lists the wallet's redeemable positions.
type PositionSource interface {
	ListRedeemablePositions(ctx context.Context, user string, pageSize int) ([]domain.Position, error)
}

// CycleConfig tunes one redemption cycle.
type CycleConfig struct {
	PageSize    int
	IncludeLost bool

	// Strict aborts the cycle on an ambiguous wallet instead of attempting
	// best-effort direct calls.
	Strict bool

	// Pace is the delay between sequential dispatches so the previous
	// nonce propagates before the next pending-nonce fetch.
	Pace time.Duration
}

// CycleSummary aggregates the outcome of one cycle for the final log line.
type CycleSummary struct {
	Positions  int
	Markets    int
	Succeeded  int
	Reverted   int
	Failed     int
	Unverified int

	SkippedDust int
	SkippedOpen int
	SkippedLost int
}

// Cycle wires the classify-resolve-build-dispatch pipeline for one run.
type Cycle struct {
	positions  PositionSource
	resolver   *Resolver
	builder    *Builder
	dispatcher *Dispatcher
	cfg        CycleConfig
	logger     *slog.Logger
}

// NewCycle creates a Cycle.
func NewCycle(positions PositionSource, resolver *Resolver, builder *Builder, dispatcher *Dispatcher, cfg CycleConfig, logger *slog.Logger) *Cycle {
	return &Cycle{
		positions:  positions,
		resolver:   resolver,
		builder:    builder,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one full redemption cycle for wallet. Per-market failures
// are recorded in the summary and do not stop the remaining markets; Run
// only returns an error for conditions that invalidate the whole cycle
// (position fetch failure, ambiguous wallet in strict mode, signer not
// authorized for the owner contract, context expiry).
func (c *Cycle) Run(ctx context.Context, wallet common.Address) (CycleSummary, error) {
	var sum CycleSummary

	positions, err := c.positions.ListRedeemablePositions(ctx, wallet.Hex(), c.cfg.PageSize)
	if err != nil {
		return sum, fmt.Errorf("redeem: cycle: %w", err)
	}
	sum.Positions = len(positions)

	classified := Classify(positions, c.cfg.IncludeLost, c.logger)
	sum.Markets = len(classified.Markets)
	sum.SkippedDust = classified.SkippedDust
	sum.SkippedOpen = classified.SkippedOpen
	sum.SkippedLost = classified.SkippedLost

	c.logger.Info("positions classified",
		"positions", sum.Positions,
		"redeemable_markets", sum.Markets,
		"skipped_dust", sum.SkippedDust,
		"skipped_open", sum.SkippedOpen,
		"skipped_lost", sum.SkippedLost)

	if sum.Markets == 0 {
		return sum, nil
	}

	profile, err := c.resolver.Resolve(ctx, wallet)
	if err != nil {
		return sum, err
	}

	if profile.Kind == domain.WalletAmbiguous {
		if c.cfg.Strict {
			return sum, fmt.Errorf("redeem: cycle: %w: wallet=%s", domain.ErrAmbiguousWallet, wallet.Hex())
		}
		c.logger.Warn("wallet topology ambiguous, attempting best-effort direct calls",
			"wallet", wallet.Hex())
	}

	signer := c.dispatcher.signer.Address()
	if profile.Kind == domain.WalletProxied {
		emptyBatch, err := c.builder.EmptyBatch()
		if err != nil {
			return sum, err
		}
		if err := c.resolver.VerifyCapability(ctx, profile, signer, emptyBatch); err != nil {
			return sum, err
		}
	}

	for i, market := range classified.Markets {
		if i > 0 && c.cfg.Pace > 0 {
			select {
			case <-ctx.Done():
				return sum, fmt.Errorf("redeem: cycle: %w", ctx.Err())
			case <-time.After(c.cfg.Pace):
			}
		}
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("redeem: cycle: %w", err)
		}

		call, err := c.builder.Build(profile, market, signer)
		if err != nil {
			sum.Failed++
			c.logger.Error("build redemption call failed",
				"condition_id", market.ConditionID, "error", err)
			continue
		}

		res := c.dispatcher.Dispatch(ctx, call)
		if res.Unverified {
			sum.Unverified++
		}
		switch res.Status {
		case DispatchSuccess:
			sum.Succeeded++
			c.logger.Info("redemption confirmed",
				"condition_id", market.ConditionID,
				"title", market.Title,
				"tx", res.TxHash.Hex(),
				"gas_used", res.GasUsed,
				"unverified", res.Unverified)
		case DispatchReverted:
			sum.Reverted++
			c.logger.Error("redemption reverted",
				"condition_id", market.ConditionID,
				"tx", res.TxHash.Hex(),
				"error", res.Err)
		case DispatchFailed:
			sum.Failed++
			c.logger.Error("redemption failed",
				"condition_id", market.ConditionID,
				"error", res.Err)
		}
	}

	return sum, nil
}
