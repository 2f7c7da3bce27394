// Package kalshi fetches market listings from the Kalshi exchange API
// and normalizes them into canonical records.
package kalshi

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

// Client is the REST client for the Kalshi exchange API. Market discovery is
// a public endpoint so no request signing is required; the response wraps
// the listings in a "markets" field alongside a pagination cursor.
type Client struct {
	baseURL    string
	siteURL    string
	limit      int
	httpClient *http.Client
}

// Config holds the adapter parameters.
//
// BaseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
// SiteURL is the public site used for record links.
type Config struct {
	BaseURL string
	SiteURL string
	Limit   int
	Timeout time.Duration
}

// NewClient creates a new Kalshi REST client.
func NewClient(cfg Config) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "https://kalshi.com"
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
	return domain.PlatformKalshi
}

// Fetch retrieves open markets and maps them to canonical records. Entries
// without a ticker are dropped.
func (c *Client) Fetch(ctx context.Context) ([]domain.MarketRecord, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("status", "open")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []APIMarket `json:"markets"`
		Cursor  string      `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode markets: %w", err)
	}
	if resp.Markets == nil {
		return nil, fmt.Errorf("kalshi: decode markets: missing markets field")
	}

	records := make([]domain.MarketRecord, 0, len(resp.Markets))
	for i := range resp.Markets {
		m := &resp.Markets[i]
		if m.Ticker == "" {
			continue
		}
		if !m.IsOpen() {
			continue
		}
		records = append(records, m.ToRecord(c.siteURL))
	}

	return records, nil
}

// doGet sends an unauthenticated GET request against the exchange API.
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

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkStatus maps non-2xx HTTP status codes to errors.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s (%s)", apiErr.Message, apiErr.Code)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("unauthorized: %s (%s)", apiErr.Message, apiErr.Code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("rate limited: %s (%s)", apiErr.Message, apiErr.Code)
	default:
		return fmt.Errorf("HTTP %d: %s (%s)", statusCode, apiErr.Message, apiErr.Code)
	}
}
