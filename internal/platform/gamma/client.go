// Package gamma is the REST client for the Polymarket Gamma API, which
// provides market metadata for outcome tokens.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/polysentinel/sentinel/internal/domain"
)

// Client queries the Gamma markets endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarketByToken returns the market that contains the given outcome token
// ID. The Gamma API returns an array; the first entry wins. It returns
// domain.ErrNotFound when no market matches.
func (g *Client) GetMarketByToken(ctx context.Context, tokenID string) (APIMarket, error) {
	params := url.Values{}
	params.Set("clob_token_ids", tokenID)

	path := "/markets?" + params.Encode()

	body, err := g.doGet(ctx, path)
	if err != nil {
		return APIMarket{}, fmt.Errorf("gamma: get market by token %s: %w", tokenID, err)
	}

	var markets []APIMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return APIMarket{}, fmt.Errorf("gamma: decode markets: %w", err)
	}

	if len(markets) == 0 {
		return APIMarket{}, fmt.Errorf("gamma: %w: token=%s", domain.ErrNotFound, tokenID)
	}

	return markets[0], nil
}

// doGet issues a GET request against the Gamma API and returns the raw body.
func (g *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
