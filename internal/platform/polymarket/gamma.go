package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API, used here
// for market metadata lookups during settlement judgment.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MarketByConditionID looks up a single market by its condition ID and
// returns its settlement metadata. Returns domain.ErrNotFound when the
// Gamma API has no market for the ID.
func (g *GammaClient) MarketByConditionID(ctx context.Context, conditionID string) (domain.MarketMetadata, error) {
	params := url.Values{}
	params.Set("condition_ids", conditionID)
	params.Set("limit", "1")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return domain.MarketMetadata{}, fmt.Errorf("polymarket/gamma: get market %s: %w", conditionID, err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return domain.MarketMetadata{}, fmt.Errorf("polymarket/gamma: decode markets: %w: %v", domain.ErrBadResponse, err)
	}

	if len(apiMarkets) == 0 {
		return domain.MarketMetadata{}, fmt.Errorf("polymarket/gamma: %w: condition_id=%s", domain.ErrNotFound, conditionID)
	}

	meta := apiMarkets[0].ToDomainMetadata()
	if meta.ConditionID == "" {
		meta.ConditionID = conditionID
	}
	return meta, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
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
