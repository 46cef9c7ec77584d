package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyclaim/internal/domain"
	"github.com/alanyoungcy/polyclaim/internal/redeem"
	"github.com/alanyoungcy/polyclaim/internal/stats"
)

// RedeemMode runs one redemption cycle under the configured run timeout.
// Missing credentials are a clean no-op: cron deployments stage config
// before secrets, and a non-zero exit would page for nothing.
func (a *App) RedeemMode(ctx context.Context, deps *Dependencies) error {
	logger := a.logger.With(slog.String("mode", "redeem"))

	if deps.Signer == nil || deps.Wallet == (common.Address{}) {
		logger.Info("credentials not configured, nothing to redeem")
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, a.cfg.Redeem.RunTimeout.Duration)
	defer cancel()

	healthCtx, healthCancel := context.WithTimeout(runCtx, a.cfg.Chain.RPCTimeout.Duration)
	err := deps.Chain.Health(healthCtx)
	healthCancel()
	if err != nil {
		return fmt.Errorf("app: redeem: %w", err)
	}

	ownerSlot := redeem.DefaultOwnerSlot
	if a.cfg.Redeem.OwnerSlot != "" {
		ownerSlot = common.HexToHash(a.cfg.Redeem.OwnerSlot)
	}

	builder, err := redeem.NewBuilder()
	if err != nil {
		return fmt.Errorf("app: redeem: %w", err)
	}
	resolver := redeem.NewResolver(deps.Chain, ownerSlot, logger)
	dispatcher := redeem.NewDispatcher(deps.Chain, deps.Signer, redeem.DispatcherConfig{
		GasBufferPct:   a.cfg.Redeem.GasBufferPct,
		GasCeiling:     a.cfg.Redeem.GasCeiling,
		ConfirmTimeout: a.cfg.Redeem.ConfirmTimeout.Duration,
	}, logger)
	cycle := redeem.NewCycle(deps.Data, resolver, builder, dispatcher, redeem.CycleConfig{
		PageSize:    a.cfg.Redeem.PageSize,
		IncludeLost: a.cfg.Redeem.IncludeLost,
		Strict:      a.cfg.Redeem.Strict,
		Pace:        a.cfg.Redeem.Pace.Duration,
	}, logger)

	logger.Info("redemption cycle starting",
		slog.String("wallet", deps.Wallet.Hex()),
		slog.String("signer", deps.Signer.Address().Hex()),
		slog.Duration("run_timeout", a.cfg.Redeem.RunTimeout.Duration))

	// The group context kills the cycle when the run timeout fires, so a
	// stuck RPC call can never outlive the scheduler interval.
	g, gctx := errgroup.WithContext(runCtx)
	var sum redeem.CycleSummary
	g.Go(func() error {
		var runErr error
		sum, runErr = cycle.Run(gctx, deps.Wallet)
		return runErr
	})
	err = g.Wait()

	logger.Info("redemption cycle finished",
		slog.Int("positions", sum.Positions),
		slog.Int("markets", sum.Markets),
		slog.Int("succeeded", sum.Succeeded),
		slog.Int("reverted", sum.Reverted),
		slog.Int("failed", sum.Failed),
		slog.Int("unverified", sum.Unverified))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("run timeout reached, cycle aborted",
				slog.Duration("run_timeout", a.cfg.Redeem.RunTimeout.Duration))
		}
		return fmt.Errorf("app: redeem: %w", err)
	}
	return nil
}

// StatsMode fetches the wallet's fill history, computes trade statistics,
// prints the summary table, and optionally writes and archives the JSON
// report.
func (a *App) StatsMode(ctx context.Context, deps *Dependencies) error {
	logger := a.logger.With(slog.String("mode", "stats"))

	user := a.cfg.Stats.User
	if user == "" {
		user = a.cfg.Wallet.Address
	}
	if user == "" {
		return fmt.Errorf("app: stats: %w: no user address configured (set stats.user or wallet.address)",
			domain.ErrMissingCredentials)
	}

	from, err := stats.ParseTimeBound(a.cfg.Stats.From)
	if err != nil {
		return fmt.Errorf("app: stats: from: %w", err)
	}
	to, err := stats.ParseTimeBound(a.cfg.Stats.To)
	if err != nil {
		return fmt.Errorf("app: stats: to: %w", err)
	}

	logger.Info("fetching fill history",
		slog.String("user", user),
		slog.Int("page_size", a.cfg.Stats.PageSize),
		slog.Int("max_fills", a.cfg.Stats.MaxFills))

	fills, err := deps.Data.ListFills(ctx, user, a.cfg.Stats.PageSize, a.cfg.Stats.MaxFills)
	if err != nil {
		return fmt.Errorf("app: stats: %w", err)
	}
	fetched := len(fills)
	fills = stats.FilterByWindow(fills, from, to)
	logger.Info("fill history fetched",
		slog.Int("fills", fetched),
		slog.Int("in_window", len(fills)))

	engine := stats.NewEngine(deps.Gamma, logger)
	st, err := engine.Summarize(ctx, user, fills, stats.Options{
		WinMode:       domain.WinMode(a.cfg.Stats.WinMode),
		MarkToMarket:  a.cfg.Stats.MarkToMarket,
		ProgressEvery: a.cfg.Stats.ProgressEvery,
	})
	if err != nil {
		return fmt.Errorf("app: stats: %w", err)
	}

	stats.RenderTable(os.Stdout, st)

	if a.cfg.Stats.OutputPath != "" {
		if err := stats.WriteJSON(a.cfg.Stats.OutputPath, st); err != nil {
			return fmt.Errorf("app: stats: %w", err)
		}
		logger.Info("report written", slog.String("path", a.cfg.Stats.OutputPath))
	}

	if deps.Archiver != nil {
		report, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("app: stats: marshal report: %w", err)
		}
		key, err := deps.Archiver.ArchiveReport(ctx, st.RunID, st.GeneratedAt, report)
		if err != nil {
			// Archiving is best effort; the report already rendered.
			logger.Error("report archive failed", slog.String("error", err.Error()))
		} else {
			logger.Info("report archived", slog.String("key", key))
		}
	}

	return nil
}
