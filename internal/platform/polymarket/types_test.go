package polymarket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

func TestStringListDecodesBothShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "plain array", in: `["Yes","No"]`, want: []string{"Yes", "No"}},
		{name: "doubly-encoded array", in: `"[\"Yes\", \"No\"]"`, want: []string{"Yes", "No"}},
		{name: "null", in: `null`, want: nil},
		{name: "empty string", in: `""`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &s))
			assert.Equal(t, StringList(tt.want), s)
		})
	}
}

func TestStringListFloats(t *testing.T) {
	// A bogus entry becomes zero in place; dropping it would shift every
	// later price onto the wrong outcome.
	s := StringList{"0.999", " 0.001", "bogus", "1"}
	assert.Equal(t, []float64{0.999, 0.001, 0, 1}, s.Floats())
}

func TestAPIMarketUnparseablePriceKeepsAlignment(t *testing.T) {
	raw := `{"conditionId":"0xcc","closed":true,"outcomes":["A","B","C"],"outcomePrices":["0.10","n/a","0.90"]}`
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	meta := m.ToDomainMetadata()
	require.Len(t, meta.OutcomePrices, len(meta.Outcomes))
	assert.Equal(t, []float64{0.10, 0, 0.90}, meta.OutcomePrices)
}

func TestAPIPositionToDomain(t *testing.T) {
	raw := `{"conditionId":"0xaa","outcomeIndex":1,"size":"12.5","curPrice":0.999,"title":"Market A","outcome":"No","redeemable":true}`
	var p APIPosition
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	pos := p.ToDomainPosition()
	assert.Equal(t, "0xaa", pos.ConditionID)
	assert.Equal(t, 1, pos.OutcomeIndex)
	assert.InDelta(t, 12.5, pos.Size, 1e-9)
	assert.InDelta(t, 0.999, pos.CurPrice, 1e-9)
	assert.Equal(t, uint64(2), pos.IndexSet())
}

func TestAPIPositionMissingIndex(t *testing.T) {
	raw := `{"conditionId":"0xaa","size":1,"curPrice":1}`
	var p APIPosition
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	pos := p.ToDomainPosition()
	assert.Equal(t, -1, pos.OutcomeIndex)
	assert.Zero(t, pos.IndexSet())
}

func TestAPIFillToDomain(t *testing.T) {
	raw := `{"conditionId":"0xaa","outcome":"Yes","side":"buy","size":"10","price":"0.4","timestamp":1700000000,"title":"Market A"}`
	var f APIFill
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	fill := f.ToDomainFill()
	assert.Equal(t, domain.FillBuy, fill.Side)
	assert.InDelta(t, 10.0, fill.Size, 1e-9)
	assert.InDelta(t, 0.4, fill.Price, 1e-9)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), fill.Timestamp)
}

func TestAPIMarketToDomain(t *testing.T) {
	raw := `{"conditionId":"0xaa","closed":true,"outcomes":"[\"Yes\", \"No\"]","outcomePrices":"[\"1\", \"0\"]"}`
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	meta := m.ToDomainMetadata()
	assert.True(t, meta.Closed)
	assert.Equal(t, []string{"Yes", "No"}, meta.Outcomes)
	assert.Equal(t, []float64{1, 0}, meta.OutcomePrices)
}
