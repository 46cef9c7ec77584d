package domain

// SizeEpsilon is the threshold below which a position size is treated as
// zero. The data API reports sizes as floats and dust amounts below this are
// not worth a redemption transaction.
const SizeEpsilon = 1e-9

// Position is one (wallet, market, outcome) exposure as reported by the
// data API. It is a read-only snapshot fetched once per cycle.
type Position struct {
	ConditionID  string
	OutcomeIndex int // -1 when the API did not report an index
	Size         float64
	CurPrice     float64
	Title        string
	Outcome      string
}

// IndexSet returns the on-chain index-set bit for this position's outcome,
// or 0 when the outcome index is unknown.
func (p Position) IndexSet() uint64 {
	if p.OutcomeIndex < 0 || p.OutcomeIndex > 62 {
		return 0
	}
	return 1 << uint(p.OutcomeIndex)
}

// Redeemable reports whether the position carries redeemable value.
func (p Position) Redeemable() bool {
	return p.Size > SizeEpsilon
}

// RedeemableMarket is the merged redemption unit for one condition: all
// outcome rows sharing a ConditionID collapse into a single market whose
// IndexSets is the union of each outcome's bit, sorted ascending.
type RedeemableMarket struct {
	ConditionID string
	IndexSets   []uint64
	Title       string
	Outcome     string
}
