package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

func TestFold(t *testing.T) {
	fills := []domain.Fill{
		fillAt("0xaa", domain.FillBuy, "Yes", 10, 0.40, 2000),
		fillAt("0xaa", domain.FillSell, "Yes", 4, 0.50, 3000),
		fillAt("0xaa", domain.FillBuy, "No", 2, 0.30, 1000),
		fillAt("0xbb", domain.FillBuy, "Yes", 1, 0.90, 5000),
	}

	ledgers := Fold(fills)
	require.Len(t, ledgers, 2)

	l := ledgers["0xaa"]
	require.NotNil(t, l)
	assert.Equal(t, 3, l.TradeCount)
	assert.InDelta(t, 6.0, l.NetSharesByOutcome["Yes"], 1e-9)
	assert.InDelta(t, 2.0, l.NetSharesByOutcome["No"], 1e-9)
	assert.True(t, l.EverBought["Yes"])
	assert.True(t, l.EverBought["No"])
	assert.InDelta(t, 4.6, l.BuyCost, 1e-9)
	assert.InDelta(t, 2.0, l.SellProceeds, 1e-9)
	assert.InDelta(t, -2.6, l.Cashflow(), 1e-9)
	assert.Equal(t, time.Unix(1000, 0).UTC(), l.FirstTimestamp)
	assert.Equal(t, time.Unix(3000, 0).UTC(), l.LastTimestamp)
}

func TestFoldSellOnlyOutcomeNotEverBought(t *testing.T) {
	fills := []domain.Fill{
		fillAt("0xaa", domain.FillSell, "Yes", 3, 0.50, 1000),
	}

	ledgers := Fold(fills)
	l := ledgers["0xaa"]
	require.NotNil(t, l)
	assert.False(t, l.EverBought["Yes"])
	assert.InDelta(t, -3.0, l.NetSharesByOutcome["Yes"], 1e-9)
}

func TestFilterByWindow(t *testing.T) {
	fills := []domain.Fill{
		fillAt("0xaa", domain.FillBuy, "Yes", 1, 0.5, 1000),
		fillAt("0xaa", domain.FillBuy, "Yes", 1, 0.5, 2000),
		fillAt("0xaa", domain.FillBuy, "Yes", 1, 0.5, 3000),
	}

	tests := []struct {
		name string
		from int64
		to   int64
		want int
	}{
		{"open window", 0, 0, 3},
		{"from bound inclusive", 2000, 0, 2},
		{"to bound inclusive", 0, 2000, 2},
		{"both bounds", 1500, 2500, 1},
		{"empty window", 4000, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var from, to time.Time
			if tt.from > 0 {
				from = time.Unix(tt.from, 0).UTC()
			}
			if tt.to > 0 {
				to = time.Unix(tt.to, 0).UTC()
			}
			assert.Len(t, FilterByWindow(fills, from, to), tt.want)
		})
	}
}

func TestParseTimeBound(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "1700000000", want: time.Unix(1700000000, 0).UTC()},
		{in: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-03-01 12:30:00", want: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{in: "2024-03-01T12:30:00Z", want: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeBound(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}
