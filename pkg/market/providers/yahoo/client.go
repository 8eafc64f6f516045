// Package yahoo implements the secondary (fallback) market data provider.
// It serves a raw daily series only; weekly and monthly views are derived by
// resampling upstream. Requests may be routed through a pass-through CORS
// relay when configured.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tickerlens-api/pkg/market"
	"tickerlens-api/pkg/series"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	defaultTimeout = 15 * time.Second
)

// Client talks to the chart API.
type Client struct {
	name       string
	baseURL    string
	relayURL   string
	httpClient *http.Client
}

// Option customises the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRelay routes every request through a pass-through relay that forwards
// the target URL supplied in its "url" query parameter.
func WithRelay(u string) Option {
	return func(c *Client) {
		c.relayURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:       "yahoo",
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return c.name }

// Daily fetches one year of daily bars. Freshness metadata derives from the
// chart meta's regular market time when present.
func (c *Client) Daily(ctx context.Context, symbol string) (series.Series, market.Meta, error) {
	result, err := c.chart(ctx, symbol, "1y", "1d")
	if err != nil {
		return nil, market.Meta{}, err
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, market.Meta{}, fmt.Errorf("%w: yahoo chart for %s has no quote block",
			market.ErrInvalidSymbol, symbol)
	}
	quote := result.Indicators.Quote[0]

	points := make([]series.Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		// The chart API pads halted sessions with nulls, which decode to
		// zero. A bar missing any price is an invalid placeholder.
		open, high, low := at(quote.Open, i), at(quote.High, i), at(quote.Low, i)
		if quote.Close[i] <= 0 || open <= 0 || high <= 0 || low <= 0 {
			continue
		}
		points = append(points, series.Point{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}
	if len(points) == 0 {
		return nil, market.Meta{}, fmt.Errorf("%w: yahoo chart for %s had no valid points",
			market.ErrInvalidSymbol, symbol)
	}

	s, err := series.Normalize(points)
	if err != nil {
		return nil, market.Meta{}, fmt.Errorf("%w: yahoo chart for %s: %v", market.ErrProviderUnavailable, symbol, err)
	}

	meta := market.Meta{}
	if result.Meta.RegularMarketTime > 0 {
		meta.LastRefreshed = time.Unix(result.Meta.RegularMarketTime, 0).UTC().Format(series.DateLayout)
	}
	return s, meta, nil
}

// Quote returns the latest regular market price for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	result, err := c.chart(ctx, symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}
	if result.Meta.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("%w: yahoo quote for %s has no price", market.ErrInvalidSymbol, symbol)
	}
	return result.Meta.RegularMarketPrice, nil
}

func (c *Client) chart(ctx context.Context, symbol, rnge, interval string) (*chartResult, error) {
	target := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.baseURL, url.PathEscape(symbol), rnge, interval)

	endpoint := target
	if c.relayURL != "" {
		endpoint = c.relayURL + "?url=" + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo chart: %v", market.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: yahoo chart for %s", market.ErrRateLimited, symbol)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: yahoo chart for %s", market.ErrInvalidSymbol, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo chart: unexpected status %d",
			market.ErrProviderUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo chart: read body: %v", market.ErrProviderUnavailable, err)
	}

	var body chartResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: yahoo chart: decode: %v", market.ErrProviderUnavailable, err)
	}
	if body.Chart.Error != nil {
		if strings.EqualFold(body.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("%w: yahoo chart for %s: %s",
				market.ErrInvalidSymbol, symbol, body.Chart.Error.Description)
		}
		return nil, fmt.Errorf("%w: yahoo chart for %s: %s: %s",
			market.ErrProviderUnavailable, symbol, body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart for %s returned no result", market.ErrInvalidSymbol, symbol)
	}
	return &body.Chart.Result[0], nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func init() {
	market.RegisterProvider("yahoo", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.RelayURL != "" {
			opts = append(opts, WithRelay(cfg.RelayURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		client := NewClient(opts...)
		client.name = name
		return client, nil
	})
}
