package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

func TestMarketByConditionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "0xaa", r.URL.Query().Get("condition_ids"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Write([]byte(`[{"conditionId":"0xaa","closed":true,"outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"1\",\"0\"]"}]`))
	}))
	t.Cleanup(srv.Close)

	c := NewGammaClient(srv.URL)
	meta, err := c.MarketByConditionID(context.Background(), "0xaa")
	require.NoError(t, err)
	assert.Equal(t, "0xaa", meta.ConditionID)
	assert.True(t, meta.Closed)
	assert.Equal(t, []string{"Yes", "No"}, meta.Outcomes)
}

func TestMarketByConditionIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewGammaClient(srv.URL)
	_, err := c.MarketByConditionID(context.Background(), "0xmissing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarketByConditionIDBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewGammaClient(srv.URL)
	_, err := c.MarketByConditionID(context.Background(), "0xaa")
	require.ErrorIs(t, err, domain.ErrBadResponse)
}
