// Package alphavantage implements the primary market data provider. The wire
// format is a date-keyed mapping of string-encoded OHLCV fields; it is
// converted into the typed series model at this boundary and never travels
// further inward.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tickerlens-api/pkg/market"
	"tickerlens-api/pkg/series"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"
	defaultTimeout = 15 * time.Second

	funcDaily   = "TIME_SERIES_DAILY"
	funcWeekly  = "TIME_SERIES_WEEKLY"
	funcMonthly = "TIME_SERIES_MONTHLY"
	funcQuote   = "GLOBAL_QUOTE"
)

// Client talks to the Alpha Vantage query API.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
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

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a client. The API key is required by the live API but
// deliberately not validated here so recorded tests can run without one.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		name:       "alphavantage",
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return c.name }

// Daily fetches the full-length daily series plus freshness metadata.
func (c *Client) Daily(ctx context.Context, symbol string) (series.Series, market.Meta, error) {
	body, err := c.query(ctx, funcDaily, symbol, url.Values{"outputsize": {"full"}})
	if err != nil {
		return nil, market.Meta{}, err
	}
	s, err := c.parseSeries(body, symbol, func(p *payload) map[string]rawBar { return p.Daily })
	if err != nil {
		return nil, market.Meta{}, err
	}
	return s, market.Meta{LastRefreshed: body.MetaData[metaLastRefreshed]}, nil
}

// Weekly fetches the native weekly series.
func (c *Client) Weekly(ctx context.Context, symbol string) (series.Series, error) {
	body, err := c.query(ctx, funcWeekly, symbol, nil)
	if err != nil {
		return nil, err
	}
	return c.parseSeries(body, symbol, func(p *payload) map[string]rawBar { return p.Weekly })
}

// Monthly fetches the native monthly series.
func (c *Client) Monthly(ctx context.Context, symbol string) (series.Series, error) {
	body, err := c.query(ctx, funcMonthly, symbol, nil)
	if err != nil {
		return nil, err
	}
	return c.parseSeries(body, symbol, func(p *payload) map[string]rawBar { return p.Monthly })
}

// Quote returns the latest traded price for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	body, err := c.query(ctx, funcQuote, symbol, nil)
	if err != nil {
		return 0, err
	}
	raw, ok := body.GlobalQuote[quotePriceField]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: alphavantage quote for %s has no price", market.ErrInvalidSymbol, symbol)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: alphavantage quote for %s: %v", market.ErrProviderUnavailable, symbol, err)
	}
	return price, nil
}

func (c *Client) query(ctx context.Context, function, symbol string, extra url.Values) (*payload, error) {
	params := url.Values{
		"function": {function},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	}
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	endpoint := c.baseURL + "/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: alphavantage %s: %v", market.ErrProviderUnavailable, function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: alphavantage %s: unexpected status %d",
			market.ErrProviderUnavailable, function, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: alphavantage %s: read body: %v", market.ErrProviderUnavailable, function, err)
	}

	var body payload
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: alphavantage %s: decode: %v", market.ErrProviderUnavailable, function, err)
	}

	// Application-level failures arrive with HTTP 200 and a message field.
	switch {
	case body.Note != "" || body.Information != "":
		return nil, fmt.Errorf("%w: alphavantage %s for %s", market.ErrRateLimited, function, symbol)
	case body.ErrorMessage != "":
		return nil, fmt.Errorf("%w: alphavantage %s for %s: %s",
			market.ErrInvalidSymbol, function, symbol, body.ErrorMessage)
	}
	return &body, nil
}

// parseSeries converts a date-keyed rawBar map into a normalized Series.
// Entries with unparsable fields are dropped; an empty result is an error,
// never an empty series.
func (c *Client) parseSeries(body *payload, symbol string, pick func(*payload) map[string]rawBar) (series.Series, error) {
	raw := pick(body)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: alphavantage returned no series for %s", market.ErrInvalidSymbol, symbol)
	}

	points := make([]series.Point, 0, len(raw))
	for dateStr, bar := range raw {
		date, err := series.ParseDate(dateStr)
		if err != nil {
			continue
		}
		point, ok := parseBar(date, bar)
		if !ok {
			continue
		}
		points = append(points, point)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: alphavantage series for %s had no parsable entries",
			market.ErrProviderUnavailable, symbol)
	}

	s, err := series.Normalize(points)
	if err != nil {
		return nil, fmt.Errorf("%w: alphavantage series for %s: %v", market.ErrProviderUnavailable, symbol, err)
	}
	return s, nil
}

func parseBar(date time.Time, bar rawBar) (series.Point, bool) {
	fields := [5]string{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume}
	var parsed [5]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return series.Point{}, false
		}
		parsed[i] = v
	}
	return series.Point{
		Date:   date,
		Open:   parsed[0],
		High:   parsed[1],
		Low:    parsed[2],
		Close:  parsed[3],
		Volume: parsed[4],
	}, true
}

func init() {
	market.RegisterProvider("alphavantage", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		client := NewClient(cfg.APIKey, opts...)
		client.name = name
		return client, nil
	})
}
