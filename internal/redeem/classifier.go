// Package redeem implements the redemption cycle: classifying settled
// positions, resolving the wallet's on-chain topology, building nested
// redemption calls, and dispatching them to the settlement contract.
package redeem

import (
	"log/slog"
	"sort"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

const (
	// wonPriceThreshold marks a position as a settled winner. The data API
	// reports prices of settled winners as 1.0 minus float noise.
	wonPriceThreshold = 0.999

	// lostPriceThreshold marks a position as a settled loser.
	lostPriceThreshold = 0.001
)

// ClassifyResult carries the merged redemption units plus counters for the
// rows that were skipped, for end-of-cycle reporting.
type ClassifyResult struct {
	Markets         []domain.RedeemableMarket
	SkippedDust     int // size at or below epsilon
	SkippedOpen     int // price between the thresholds, market not settled
	SkippedLost     int // settled losers, excluded unless includeLost
	MissingIndexSet int // included rows with no usable outcome index
}

// Classify filters the wallet's positions down to settled markets worth a
// redemption transaction and merges outcome rows per condition. When
// includeLost is set, settled losing positions are included too: they pay
// nothing but clear the wallet's position state.
//
// A market qualifies when any of its rows qualifies; the merged index sets
// then union the bits of every live row of that market, including rows
// whose own classification disagrees (API settlement data can lag per
// outcome). Per-row classification only drives the skip counters. The
// returned markets preserve the order conditions first appeared in.
func Classify(positions []domain.Position, includeLost bool, logger *slog.Logger) ClassifyResult {
	var res ClassifyResult

	include := make(map[string]bool)
	for _, p := range positions {
		if !p.Redeemable() {
			continue
		}
		won := p.CurPrice >= wonPriceThreshold
		lost := p.CurPrice <= lostPriceThreshold
		if won || (lost && includeLost) {
			include[p.ConditionID] = true
		}
	}

	type group struct {
		market domain.RedeemableMarket
		bits   uint64
	}
	var order []string
	groups := make(map[string]*group)

	for _, p := range positions {
		if !p.Redeemable() {
			res.SkippedDust++
			continue
		}
		if !include[p.ConditionID] {
			if p.CurPrice <= lostPriceThreshold {
				res.SkippedLost++
			} else {
				res.SkippedOpen++
			}
			continue
		}

		g, ok := groups[p.ConditionID]
		if !ok {
			g = &group{market: domain.RedeemableMarket{
				ConditionID: p.ConditionID,
				Title:       p.Title,
				Outcome:     p.Outcome,
			}}
			groups[p.ConditionID] = g
			order = append(order, p.ConditionID)
		}

		bit := p.IndexSet()
		if bit == 0 {
			res.MissingIndexSet++
			logger.Warn("position has no usable outcome index",
				"condition_id", p.ConditionID,
				"outcome", p.Outcome,
				"outcome_index", p.OutcomeIndex)
			continue
		}
		g.bits |= bit
	}

	for _, id := range order {
		g := groups[id]
		g.market.IndexSets = expandBits(g.bits)
		res.Markets = append(res.Markets, g.market)
	}

	return res
}

// expandBits converts the union bitmask into the sorted per-bit index-set
// slice the settlement contract expects. An empty mask falls back to the
// binary-market sets {1, 2}: redeeming an index set the wallet holds no
// balance in is a harmless no-op on chain.
func expandBits(bits uint64) []uint64 {
	if bits == 0 {
		return []uint64{1, 2}
	}
	var sets []uint64
	for i := uint(0); i < 64; i++ {
		if bits&(1<<i) != 0 {
			sets = append(sets, 1<<i)
		}
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i] < sets[j] })
	return sets
}
