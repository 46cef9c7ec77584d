package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// pagedServer serves total synthetic rows through offset/limit pagination
// and records the requests it saw.
func pagedServer(t *testing.T, path string, total int, row func(i int) any) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, path, r.URL.Path)
		queries = append(queries, r.URL.RawQuery)

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var page []any
		for i := offset; i < total && len(page) < limit; i++ {
			page = append(page, row(i))
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestListRedeemablePositionsPaginates(t *testing.T) {
	srv, queries := pagedServer(t, "/positions", 5, func(i int) any {
		return map[string]any{
			"conditionId":  fmt.Sprintf("0x%02d", i),
			"outcomeIndex": 0,
			"size":         10,
			"curPrice":     1.0,
		}
	})

	c := NewDataClient(srv.URL)
	positions, err := c.ListRedeemablePositions(context.Background(), "0xwallet", 2)
	require.NoError(t, err)
	assert.Len(t, positions, 5)

	// Short last page ends pagination: 2 + 2 + 1.
	assert.Len(t, *queries, 3)
	assert.Contains(t, (*queries)[0], "redeemable=true")
	assert.Contains(t, (*queries)[0], "user=0xwallet")
}

func TestListFillsStopsOnShortPage(t *testing.T) {
	srv, queries := pagedServer(t, "/trades", 3, func(i int) any {
		return map[string]any{
			"conditionId": fmt.Sprintf("0x%02d", i),
			"side":        "BUY",
			"size":        1,
			"price":       0.5,
			"timestamp":   1700000000 + i,
		}
	})

	c := NewDataClient(srv.URL)
	fills, err := c.ListFills(context.Background(), "0xwallet", 2, 0)
	require.NoError(t, err)
	assert.Len(t, fills, 3)
	assert.Len(t, *queries, 2)
}

func TestListFillsHonoursMaxFills(t *testing.T) {
	srv, _ := pagedServer(t, "/trades", 100, func(i int) any {
		return map[string]any{
			"conditionId": fmt.Sprintf("0x%02d", i),
			"side":        "SELL",
			"size":        1,
			"price":       0.5,
			"timestamp":   1700000000 + i,
		}
	})

	c := NewDataClient(srv.URL)
	fills, err := c.ListFills(context.Background(), "0xwallet", 40, 50)
	require.NoError(t, err)
	assert.Len(t, fills, 50)
}

func TestListPositionsEmptyWallet(t *testing.T) {
	srv, _ := pagedServer(t, "/positions", 0, func(i int) any { return nil })

	c := NewDataClient(srv.URL)
	positions, err := c.ListRedeemablePositions(context.Background(), "0xwallet", 50)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestCheckHTTPStatus(t *testing.T) {
	tests := []struct {
		code    int
		wantErr error
	}{
		{http.StatusOK, nil},
		{http.StatusNoContent, nil},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.code), func(t *testing.T) {
			err := checkHTTPStatus(tt.code, []byte("body"))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	// Unmapped codes still error with the status in the message.
	err := checkHTTPStatus(http.StatusBadGateway, []byte("oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestListFillsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := NewDataClient(srv.URL)
	_, err := c.ListFills(context.Background(), "0xwallet", 10, 0)
	require.ErrorIs(t, err, domain.ErrRateLimited)
}
