// Package stats computes trade statistics over a wallet's fill history.
package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// Fold aggregates fills into one ledger per market. Folding is pure and
// order-insensitive for every field except the first/last timestamps,
// which track the actual min and max seen.
func Fold(fills []domain.Fill) map[string]*domain.MarketLedger {
	ledgers := make(map[string]*domain.MarketLedger)

	for _, f := range fills {
		l, ok := ledgers[f.ConditionID]
		if !ok {
			l = &domain.MarketLedger{
				ConditionID:        f.ConditionID,
				NetSharesByOutcome: make(map[string]float64),
				EverBought:         make(map[string]bool),
				FirstTimestamp:     f.Timestamp,
				LastTimestamp:      f.Timestamp,
				Title:              f.Title,
			}
			ledgers[f.ConditionID] = l
		}

		l.TradeCount++
		notional := f.Size * f.Price
		switch f.Side {
		case domain.FillBuy:
			l.NetSharesByOutcome[f.Outcome] += f.Size
			l.EverBought[f.Outcome] = true
			l.BuyCost += notional
		case domain.FillSell:
			l.NetSharesByOutcome[f.Outcome] -= f.Size
			l.SellProceeds += notional
		}

		if f.Timestamp.Before(l.FirstTimestamp) {
			l.FirstTimestamp = f.Timestamp
		}
		if f.Timestamp.After(l.LastTimestamp) {
			l.LastTimestamp = f.Timestamp
		}
		if l.Title == "" {
			l.Title = f.Title
		}
	}

	return ledgers
}

// FilterByWindow returns the fills with from <= Timestamp <= to. A zero
// bound is open on that side. Fills without a usable timestamp are
// excluded from time-filtered runs; against an open window everything
// passes through untouched.
func FilterByWindow(fills []domain.Fill, from, to time.Time) []domain.Fill {
	if from.IsZero() && to.IsZero() {
		return fills
	}
	out := make([]domain.Fill, 0, len(fills))
	for _, f := range fills {
		if f.Timestamp.IsZero() {
			continue
		}
		if !from.IsZero() && f.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && f.Timestamp.After(to) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// timeBoundLayouts are the calendar formats ParseTimeBound accepts, tried
// in order.
var timeBoundLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimeBound parses a window bound given either as epoch seconds or as
// a calendar string. Calendar strings without a zone are read as UTC. An
// empty string returns the zero time (open bound).
func ParseTimeBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}

	for _, layout := range timeBoundLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("stats: cannot parse time bound %q (want epoch seconds, %s, %s, or %s)",
		s, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02")
}
