package domain

import "time"

// WinMode selects how a settled market is judged won or lost.
type WinMode string

const (
	// WinModeNetPosition judges by the outcome with the largest net holding.
	WinModeNetPosition WinMode = "net_position"

	// WinModeEverBought counts a win whenever the winning outcome was ever
	// bought, regardless of net position sign.
	WinModeEverBought WinMode = "ever_bought"
)

// Valid reports whether m is a recognised win mode.
func (m WinMode) Valid() bool {
	return m == WinModeNetPosition || m == WinModeEverBought
}

// MarketMetadata is the external market record used for settlement
// judgment: the closed flag plus parallel outcome/price vectors.
type MarketMetadata struct {
	ConditionID   string
	Closed        bool
	Outcomes      []string
	OutcomePrices []float64
}

// SettlementJudgment is derived from MarketMetadata. A market is judged
// resolved only when it is closed and its price vector is near-binary
// (max >= 0.99 and min <= 0.01). This is an empirical signal over reported
// data, not an on-chain proof; a stale metadata provider can misclassify.
type SettlementJudgment struct {
	Resolved       bool
	WinningOutcome string // set only when Resolved
}

// MarkToMarketStats values unresolved markets at the provider's current
// prices. Kept separate from the settled-only figures.
type MarkToMarketStats struct {
	UnresolvedMarkets int     `json:"unresolved_markets"`
	UnsettledValue    float64 `json:"unsettled_value"`
	PnLWithUnsettled  float64 `json:"pnl_with_unsettled"`
	ROIWithUnsettled  float64 `json:"roi_with_unsettled"`
}

// Stats is the output of one statistics run over a wallet's fill history.
// ProfitFactor and WinLossRatio are nil exactly when undefined (no losses).
type Stats struct {
	RunID       string    `json:"run_id"`
	Wallet      string    `json:"wallet"`
	WinMode     WinMode   `json:"win_mode"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalFills         int `json:"total_fills"`
	MarketsTraded      int `json:"markets_traded"`
	SettledMarkets     int `json:"settled_markets"`
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	NoPosition         int `json:"no_position"`
	UnsettledOrUnknown int `json:"unsettled_or_unknown"`

	WinRate             *float64 `json:"win_rate"`
	TotalBuyCost        float64  `json:"total_buy_cost"`
	TotalSellProceeds   float64  `json:"total_sell_proceeds"`
	SettledPnL          float64  `json:"settled_pnl"`
	ROI                 *float64 `json:"roi"`
	TotalProfitFromWins float64  `json:"total_profit_from_wins"`
	TotalLossFromLosses float64  `json:"total_loss_from_losses"`
	ProfitFactor        *float64 `json:"profit_factor"`
	AvgWin              float64  `json:"avg_win"`
	AvgLoss             float64  `json:"avg_loss"`
	WinLossRatio        *float64 `json:"win_loss_ratio"`

	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxDrawdownFraction float64 `json:"max_drawdown_fraction"`
	MaxWinStreak        int     `json:"max_win_streak"`
	MaxLossStreak       int     `json:"max_loss_streak"`

	MarkToMarket *MarkToMarketStats `json:"mark_to_market,omitempty"`
}
