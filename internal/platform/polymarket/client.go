// Package polymarket fetches market listings from the Polymarket Gamma API
// and normalizes them into canonical records.
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

	"github.com/dshen0/predboard/internal/domain"
)

// Client is the REST client for the Polymarket Gamma API, which provides
// market discovery and metadata. The /markets endpoint returns a bare JSON
// array.
type Client struct {
	baseURL    string
	siteURL    string
	limit      int
	httpClient *http.Client
}

// Config holds the adapter parameters.
//
// BaseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
// SiteURL is the public site used for record links when a slug is missing.
type Config struct {
	BaseURL string
	SiteURL string
	Limit   int
	Timeout time.Duration
}

// NewClient creates a new Gamma API client.
func NewClient(cfg Config) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "https://polymarket.com"
	}
	return &Client{
		baseURL: cfg.BaseURL,
		siteURL: cfg.SiteURL,
		limit:   cfg.Limit,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Platform returns the source tag stamped on every record.
func (c *Client) Platform() domain.Platform {
	return domain.PlatformPolymarket
}

// Fetch retrieves active, open markets and maps them to canonical records.
// Entries without a usable external identifier are dropped; malformed numeric
// and date fields are coerced, never fatal.
func (c *Client) Fetch(ctx context.Context) ([]domain.MarketRecord, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("active", "true")
	params.Set("closed", "false")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket: decode markets: expected array: %w", err)
	}

	records := make([]domain.MarketRecord, 0, len(apiMarkets))
	for i := range apiMarkets {
		m := &apiMarkets[i]
		if m.ID == "" {
			continue
		}
		if !m.IsOpen() {
			continue
		}
		records = append(records, m.ToRecord(c.siteURL))
	}

	return records, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
