package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// positionEpsilon is the net-share threshold below which a holding counts
// as no position.
const positionEpsilon = domain.SizeEpsilon

// Options tunes one statistics run.
type Options struct {
	WinMode domain.WinMode

	// MarkToMarket values unresolved markets at current prices in a
	// separate section of the output.
	MarkToMarket bool

	// ProgressEvery logs a progress line every N markets judged (0 =
	// silent).
	ProgressEvery int
}

// Engine folds a fill history into Stats. It is stateless across runs;
// metadata lookups are memoized per run through a CachingMetadataSource.
type Engine struct {
	metadata MetadataSource
	logger   *slog.Logger
}

// NewEngine creates an Engine reading settlement metadata from src.
func NewEngine(src MetadataSource, logger *slog.Logger) *Engine {
	return &Engine{
		metadata: NewCachingMetadataSource(src),
		logger:   logger,
	}
}

// marketOutcome is one settled (or unresolved) market's contribution,
// retained in ledger order for the sequential drawdown and streak passes.
type marketOutcome struct {
	ledger       *domain.MarketLedger
	judgment     domain.SettlementJudgment
	metaOK       bool
	pnl          float64
	settledValue float64
	class        marketClass
	current      domain.MarketMetadata
}

type marketClass int

const (
	classUnsettled marketClass = iota
	classWin
	classLoss
	classNoPosition
)

// Summarize computes the full statistics for wallet over fills. Metadata
// lookup failures for individual markets downgrade those markets to
// unsettled rather than failing the run; only context expiry aborts.
func (e *Engine) Summarize(ctx context.Context, wallet string, fills []domain.Fill, opts Options) (*domain.Stats, error) {
	if !opts.WinMode.Valid() {
		return nil, fmt.Errorf("stats: invalid win mode %q", opts.WinMode)
	}

	ledgers := Fold(fills)

	// Chronological market order, by last fill; drawdown and streaks need
	// a stable sequence.
	ordered := make([]*domain.MarketLedger, 0, len(ledgers))
	for _, l := range ledgers {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].LastTimestamp.Equal(ordered[j].LastTimestamp) {
			return ordered[i].LastTimestamp.Before(ordered[j].LastTimestamp)
		}
		return ordered[i].ConditionID < ordered[j].ConditionID
	})

	outcomes := make([]marketOutcome, 0, len(ordered))
	for i, l := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stats: summarize: %w", err)
		}

		mo := marketOutcome{ledger: l, class: classUnsettled}

		meta, err := e.metadata.MarketByConditionID(ctx, l.ConditionID)
		switch {
		case err == nil:
			mo.metaOK = true
			mo.current = meta
			mo.judgment = Judge(meta)
		case errors.Is(err, domain.ErrNotFound):
			e.logger.Debug("no metadata for market", "condition_id", l.ConditionID)
		default:
			e.logger.Warn("metadata lookup failed, market left unsettled",
				"condition_id", l.ConditionID, "error", err)
		}

		if mo.judgment.Resolved {
			mo.pnl, mo.settledValue, mo.class = e.settle(l, mo.judgment.WinningOutcome, opts.WinMode)
		}
		outcomes = append(outcomes, mo)

		if opts.ProgressEvery > 0 && (i+1)%opts.ProgressEvery == 0 {
			e.logger.Info("judging markets", "done", i+1, "total", len(ordered))
		}
	}

	st := &domain.Stats{
		RunID:       uuid.New().String(),
		Wallet:      wallet,
		WinMode:     opts.WinMode,
		GeneratedAt: time.Now().UTC(),
		TotalFills:  len(fills),
	}
	st.MarketsTraded = len(ordered)

	e.financials(st, outcomes)
	e.sequences(st, outcomes)
	if opts.MarkToMarket {
		st.MarkToMarket = e.markToMarket(st, outcomes)
	}

	return st, nil
}

// settle computes one settled market's PnL, settled value, and win/loss
// class. Every winning share pays out one unit of collateral; net holdings
// are clamped at zero since sold-short display amounts cannot be redeemed.
func (e *Engine) settle(l *domain.MarketLedger, winner string, mode domain.WinMode) (float64, float64, marketClass) {
	settledValue := l.NetSharesByOutcome[winner]
	if settledValue < 0 {
		settledValue = 0
	}
	pnl := settledValue + l.Cashflow()

	switch mode {
	case domain.WinModeEverBought:
		if l.EverBought[winner] {
			return pnl, settledValue, classWin
		}
		if len(l.EverBought) == 0 {
			return pnl, settledValue, classNoPosition
		}
		return pnl, settledValue, classLoss

	default: // net_position
		switch held := largestHolding(l); {
		case held == "":
			return pnl, settledValue, classNoPosition
		case held == winner:
			return pnl, settledValue, classWin
		default:
			return pnl, settledValue, classLoss
		}
	}
}

// largestHolding returns the outcome with the biggest positive net
// position, or "" when no outcome is held long. Ties break towards the
// lexicographically smaller outcome so repeated runs agree.
func largestHolding(l *domain.MarketLedger) string {
	best := ""
	bestNet := positionEpsilon
	for outcome, net := range l.NetSharesByOutcome {
		if net > bestNet || (net == bestNet && best != "" && outcome < best) {
			best = outcome
			bestNet = net
		}
	}
	return best
}

// financials fills the counting and monetary fields.
func (e *Engine) financials(st *domain.Stats, outcomes []marketOutcome) {
	for _, mo := range outcomes {
		st.TotalBuyCost += mo.ledger.BuyCost
		st.TotalSellProceeds += mo.ledger.SellProceeds

		switch mo.class {
		case classUnsettled:
			st.UnsettledOrUnknown++
			continue
		case classWin:
			st.Wins++
			// Risk accounting against the capital still committed at
			// settlement, never below zero, so cashflow quirks cannot
			// inflate either side.
			if profit := mo.settledValue - mo.ledger.NetCost(); profit > 0 {
				st.TotalProfitFromWins += profit
			}
		case classLoss:
			st.Losses++
			if loss := mo.ledger.NetCost(); loss > 0 {
				st.TotalLossFromLosses += loss
			}
		case classNoPosition:
			st.NoPosition++
		}
		st.SettledMarkets++
		st.SettledPnL += mo.pnl
	}

	if decided := st.Wins + st.Losses; decided > 0 {
		rate := float64(st.Wins) / float64(decided)
		st.WinRate = &rate
	}
	if st.TotalBuyCost > 0 {
		roi := st.SettledPnL / st.TotalBuyCost
		st.ROI = &roi
	}
	if st.Wins > 0 {
		st.AvgWin = st.TotalProfitFromWins / float64(st.Wins)
	}
	if st.Losses > 0 {
		st.AvgLoss = st.TotalLossFromLosses / float64(st.Losses)
	}
	if st.TotalLossFromLosses > 0 {
		pf := st.TotalProfitFromWins / st.TotalLossFromLosses
		st.ProfitFactor = &pf
	}
	if st.AvgLoss > 0 {
		r := st.AvgWin / st.AvgLoss
		st.WinLossRatio = &r
	}
}

// sequences computes drawdown and streaks over the settled markets in
// chronological order. No-position markets contribute their PnL to the
// equity curve and reset both streaks. Drawdown measures the give-back of
// realised gains: the trough basis clamps at zero, so the drawdown never
// exceeds the peak it is measured against and the fraction stays <= 1.
func (e *Engine) sequences(st *domain.Stats, outcomes []marketOutcome) {
	var (
		cum, peak, peakAtMax float64
		winStreak, lossStreak int
	)

	for _, mo := range outcomes {
		if mo.class == classUnsettled {
			continue
		}

		cum += mo.pnl
		if cum > peak {
			peak = cum
		}
		trough := cum
		if trough < 0 {
			trough = 0
		}
		if dd := peak - trough; dd > st.MaxDrawdown {
			st.MaxDrawdown = dd
			peakAtMax = peak
		}

		switch mo.class {
		case classWin:
			winStreak++
			lossStreak = 0
		case classLoss:
			lossStreak++
			winStreak = 0
		default:
			winStreak = 0
			lossStreak = 0
		}
		if winStreak > st.MaxWinStreak {
			st.MaxWinStreak = winStreak
		}
		if lossStreak > st.MaxLossStreak {
			st.MaxLossStreak = lossStreak
		}
	}

	if peakAtMax > 0 {
		st.MaxDrawdownFraction = st.MaxDrawdown / peakAtMax
	}
}

// markToMarket values unresolved markets at the metadata provider's
// current prices, long holdings only.
func (e *Engine) markToMarket(st *domain.Stats, outcomes []marketOutcome) *domain.MarkToMarketStats {
	mtm := &domain.MarkToMarketStats{}
	var unsettledCashflow float64

	for _, mo := range outcomes {
		if mo.class != classUnsettled {
			continue
		}
		mtm.UnresolvedMarkets++
		unsettledCashflow += mo.ledger.Cashflow()
		if !mo.metaOK {
			continue
		}

		prices := make(map[string]float64, len(mo.current.Outcomes))
		for i, name := range mo.current.Outcomes {
			if i < len(mo.current.OutcomePrices) {
				prices[name] = mo.current.OutcomePrices[i]
			}
		}
		for outcome, net := range mo.ledger.NetSharesByOutcome {
			if net > positionEpsilon {
				mtm.UnsettledValue += net * prices[outcome]
			}
		}
	}

	mtm.PnLWithUnsettled = st.SettledPnL + mtm.UnsettledValue + unsettledCashflow
	if st.TotalBuyCost > 0 {
		mtm.ROIWithUnsettled = mtm.PnLWithUnsettled / st.TotalBuyCost
	}
	return mtm
}
