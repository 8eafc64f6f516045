// Package market defines the provider contracts, the multi-timeframe bundle
// and the aggregation logic that turns raw provider series into the six
// canonical analysis windows.
package market

import (
	"context"

	"tickerlens-api/pkg/series"
)

// Meta carries provider-reported freshness information alongside a series.
type Meta struct {
	// LastRefreshed is the provider's last-refreshed stamp. The leading
	// calendar date in series.DateLayout form is what staleness checks use.
	LastRefreshed string
}

// Provider is the common base implemented by concrete market data clients.
// Optional capabilities are discovered via interface assertions.
type Provider interface {
	Name() string
}

// SeriesProvider serves native daily, weekly and monthly series. This is the
// contract of the primary provider.
type SeriesProvider interface {
	Provider
	Daily(ctx context.Context, symbol string) (series.Series, Meta, error)
	Weekly(ctx context.Context, symbol string) (series.Series, error)
	Monthly(ctx context.Context, symbol string) (series.Series, error)
}

// FallbackProvider serves a raw daily series only; weekly and monthly views
// are derived by resampling.
type FallbackProvider interface {
	Provider
	Daily(ctx context.Context, symbol string) (series.Series, Meta, error)
}

// QuoteProvider serves the latest close for a symbol. Used by the price
// poller, which needs nothing heavier than a single number.
type QuoteProvider interface {
	Provider
	Quote(ctx context.Context, symbol string) (float64, error)
}
