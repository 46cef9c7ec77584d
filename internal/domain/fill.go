package domain

import "time"

// FillSide is the taker direction of a historical fill.
type FillSide string

const (
	FillBuy  FillSide = "BUY"
	FillSell FillSide = "SELL"
)

// Fill is one historical trade record from the data API. Immutable; the
// statistics engine fetches the full history on every run.
type Fill struct {
	ConditionID string
	Outcome     string
	Side        FillSide
	Size        float64
	Price       float64
	Timestamp   time.Time
	Title       string
}

// MarketLedger is the per-condition aggregate built by folding every fill
// for that market. NetSharesByOutcome keys are only outcomes that appear in
// at least one fill.
type MarketLedger struct {
	ConditionID        string
	TradeCount         int
	NetSharesByOutcome map[string]float64
	EverBought         map[string]bool
	BuyCost            float64
	SellProceeds       float64
	FirstTimestamp     time.Time
	LastTimestamp      time.Time
	Title              string
}

// Cashflow is sell proceeds minus buy cost, ignoring settlement.
func (l *MarketLedger) Cashflow() float64 {
	return l.SellProceeds - l.BuyCost
}

// NetCost is buy cost minus sell proceeds; the capital still at risk in the
// market absent settlement.
func (l *MarketLedger) NetCost() float64 {
	return l.BuyCost - l.SellProceeds
}
