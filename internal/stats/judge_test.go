package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

func TestJudge(t *testing.T) {
	tests := []struct {
		name       string
		meta       domain.MarketMetadata
		resolved   bool
		wantWinner string
	}{
		{
			name: "closed near-binary market resolves",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{0.999, 0.001},
			},
			resolved:   true,
			wantWinner: "Yes",
		},
		{
			name: "winner can be any index",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{0.0, 1.0},
			},
			resolved:   true,
			wantWinner: "No",
		},
		{
			name: "open market never resolves",
			meta: domain.MarketMetadata{
				Closed:        false,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{1.0, 0.0},
			},
		},
		{
			name: "closed market with mid prices stays unresolved",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{0.6, 0.4},
			},
		},
		{
			name: "max below threshold stays unresolved",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{0.98, 0.005},
			},
		},
		{
			name: "min above threshold stays unresolved",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{0.995, 0.02},
			},
		},
		{
			name: "mismatched vectors stay unresolved",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"Yes", "No"},
				OutcomePrices: []float64{1.0},
			},
		},
		{
			name: "multi-outcome market resolves to highest price",
			meta: domain.MarketMetadata{
				Closed:        true,
				Outcomes:      []string{"A", "B", "C"},
				OutcomePrices: []float64{0.0, 1.0, 0.0},
			},
			resolved:   true,
			wantWinner: "B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := Judge(tt.meta)
			assert.Equal(t, tt.resolved, j.Resolved)
			assert.Equal(t, tt.wantWinner, j.WinningOutcome)
		})
	}
}

func TestCachingMetadataSource(t *testing.T) {
	src := &fakeMeta{markets: map[string]domain.MarketMetadata{
		"0xaa": resolvedBinary("0xaa", "Yes"),
	}}
	cached := NewCachingMetadataSource(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		meta, err := cached.MarketByConditionID(ctx, "0xaa")
		require.NoError(t, err)
		assert.Equal(t, "0xaa", meta.ConditionID)
	}
	assert.Equal(t, 1, src.lookups)

	// Not-found is memoized too; the API will not grow the market mid-run.
	for i := 0; i < 3; i++ {
		_, err := cached.MarketByConditionID(ctx, "0xbb")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, 2, src.lookups)
}
