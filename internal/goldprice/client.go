// Package goldprice provides the gold spot price per gram in USD, cached
// in front of an external metals price API.
package goldprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// metalpriceapi.com ships this literal in its .env template; treat it the
// same as no key at all.
const placeholderAPIKey = "your_metal_price_api_key_here"

// Fetcher retrieves the current gold price per gram from an external source.
type Fetcher interface {
	Fetch(ctx context.Context) (float64, error)
}

// Client is the metals price API client.
type Client struct {
	url        string
	apiKey     string
	currency   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(url, apiKey, currency string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		url:      url,
		apiKey:   apiKey,
		currency: currency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type feedResponse struct {
	Status string `json:"status"`
	Data   struct {
		MetalPrices map[string]struct {
			Price float64 `json:"price"`
		} `json:"metal_prices"`
	} `json:"data"`
}

// Fetch performs one GET against the feed and extracts the per-gram price
// for the configured metal. Any unexpected shape is an error. Every
// attempt gets a correlation id that is logged on both outcomes.
func (c *Client) Fetch(ctx context.Context) (float64, error) {
	fetchID := uuid.NewString()

	price, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("gold feed fetch failed",
			zap.String("fetch_id", fetchID),
			zap.Error(err),
		)
		return 0, err
	}

	c.log.Debug("fetched gold price",
		zap.String("fetch_id", fetchID),
		zap.Float64("price", price),
	)
	return price, nil
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	if c.apiKey == "" || c.apiKey == placeholderAPIKey {
		return 0, errors.New("gold feed api key missing or placeholder")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("feed request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode feed response: %w", err)
	}
	if body.Status != "success" {
		return 0, fmt.Errorf("feed returned status %q", body.Status)
	}

	metal, ok := body.Data.MetalPrices[c.currency]
	if !ok {
		return 0, fmt.Errorf("feed response missing %s price", c.currency)
	}

	return metal.Price, nil
}
