// Package price contains the supported price source clients.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGecko fetches the current token price from the CoinGecko
// simple/price endpoint. No API key is required.
type CoinGecko struct {
	baseURL string
	coinID  string
	vs      string
	client  *http.Client
}

// CoinGeckoOption is a function that configures a CoinGecko client
type CoinGeckoOption func(*CoinGecko)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) CoinGeckoOption {
	return func(c *CoinGecko) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) CoinGeckoOption {
	return func(c *CoinGecko) {
		c.client = client
	}
}

// NewCoinGecko creates a client for the given token id and quote currency
// (e.g. "arbitrum", "usd").
func NewCoinGecko(coinID, vsCurrency string, options ...CoinGeckoOption) *CoinGecko {
	c := &CoinGecko{
		baseURL: defaultCoinGeckoURL,
		coinID:  coinID,
		vs:      vsCurrency,
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Current implements core.PriceSource.
func (c *CoinGecko) Current(ctx context.Context) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(c.coinID), url.QueryEscape(c.vs))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("coingecko rate limited")
	}
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("coingecko HTTP %d: %s", res.StatusCode, string(body))
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return 0, err
	}

	quote, ok := payload[c.coinID][c.vs]
	if !ok {
		return 0, fmt.Errorf("no %s price for %q in response", c.vs, c.coinID)
	}

	return quote, nil
}
