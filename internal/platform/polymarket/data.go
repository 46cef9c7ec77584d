// Package polymarket provides REST clients for the Polymarket data and
// Gamma APIs.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// DataClient is the REST client for the Polymarket data API, which serves
// wallet positions and historical trades.
type DataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDataClient creates a new data API client.
//
// baseURL is the data API root, e.g. "https://data-api.polymarket.com".
func NewDataClient(baseURL string) *DataClient {
	return &DataClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListRedeemablePositions pages through the /positions endpoint with
// redeemable=true and returns every position for the given wallet.
// Pagination stops on an empty or short page.
func (d *DataClient) ListRedeemablePositions(ctx context.Context, user string, pageSize int) ([]domain.Position, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	var positions []domain.Position
	for offset := 0; ; offset += pageSize {
		params := url.Values{}
		params.Set("user", user)
		params.Set("redeemable", "true")
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("offset", strconv.Itoa(offset))

		body, err := d.doGet(ctx, "/positions?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("polymarket/data: list positions (offset %d): %w", offset, err)
		}

		var page []APIPosition
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("polymarket/data: decode positions: %w: %v", domain.ErrBadResponse, err)
		}

		for i := range page {
			positions = append(positions, page[i].ToDomainPosition())
		}

		if len(page) < pageSize {
			return positions, nil
		}
	}
}

// ListFills pages through the /trades endpoint and returns the wallet's
// fill history, most recent first as served by the API. maxFills caps the
// total fetched (0 = unlimited); pagination otherwise stops on an empty or
// short page.
func (d *DataClient) ListFills(ctx context.Context, user string, pageSize, maxFills int) ([]domain.Fill, error) {
	if pageSize <= 0 {
		pageSize = 200
	}

	var fills []domain.Fill
	for offset := 0; ; offset += pageSize {
		limit := pageSize
		if maxFills > 0 && maxFills-len(fills) < limit {
			limit = maxFills - len(fills)
		}
		if limit <= 0 {
			return fills, nil
		}

		params := url.Values{}
		params.Set("user", user)
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))

		body, err := d.doGet(ctx, "/trades?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("polymarket/data: list fills (offset %d): %w", offset, err)
		}

		var page []APIFill
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("polymarket/data: decode fills: %w: %v", domain.ErrBadResponse, err)
		}

		for i := range page {
			fills = append(fills, page[i].ToDomainFill())
		}

		if len(page) < limit {
			return fills, nil
		}
	}
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the data API.
func (d *DataClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
