package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"tickerlens-api/pkg/series"
)

// Canonical slicing windows applied after fetching.
const (
	dayWindowBars   = 30
	weekWindowBars  = 12
	monthWindowBars = 12

	threeMonthDays = 90
	sixMonthDays   = 180
	yearDays       = 365
)

// Timeframe labels in canonical digest order.
const (
	TimeframeDay        = "1D"
	TimeframeWeek       = "1W"
	TimeframeMonth      = "1M"
	TimeframeThreeMonth = "3M"
	TimeframeSixMonth   = "6M"
	TimeframeYear       = "1Y"
)

// Bundle holds the six timeframe views produced per analysis request. It is
// constructed fresh for each request and never mutated afterwards.
type Bundle struct {
	Symbol     string
	Day        series.Series
	Week       series.Series
	Month      series.Series
	ThreeMonth series.Series
	SixMonth   series.Series
	Year       series.Series
}

// View pairs a timeframe label with its series.
type View struct {
	Timeframe string
	Series    series.Series
}

// Views returns the bundle's timeframes in canonical order.
func (b *Bundle) Views() []View {
	return []View{
		{TimeframeDay, b.Day},
		{TimeframeWeek, b.Week},
		{TimeframeMonth, b.Month},
		{TimeframeThreeMonth, b.ThreeMonth},
		{TimeframeSixMonth, b.SixMonth},
		{TimeframeYear, b.Year},
	}
}

// Aggregator fetches multi-timeframe bundles with primary/fallback routing.
type Aggregator struct {
	primary  SeriesProvider
	fallback FallbackProvider
	now      func() time.Time
}

// AggregatorOption customises an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the aggregator's time source, primarily for tests.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator constructs an Aggregator. The fallback provider may be nil,
// in which case primary failures escalate directly.
func NewAggregator(primary SeriesProvider, fallback FallbackProvider, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		primary:  primary,
		fallback: fallback,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchBundle retrieves daily, weekly and monthly series for symbol and
// slices them into the six canonical windows. The three primary requests are
// fanned out concurrently and combined only after all resolve; failure of any
// one routes the whole bundle through the fallback provider rather than
// substituting partial data. When the fallback also fails or returns zero
// points, the result is ErrDataUnavailable.
func (a *Aggregator) FetchBundle(ctx context.Context, symbol string) (*Bundle, QuoteStatus, error) {
	bundle, status, err := a.fromPrimary(ctx, symbol)
	if err == nil {
		return bundle, status, nil
	}
	if errors.Is(err, ErrInvalidSymbol) {
		return nil, QuoteStatus{}, err
	}
	if a.fallback == nil {
		return nil, QuoteStatus{}, fmt.Errorf("%w: primary failed with no fallback: %v", ErrDataUnavailable, err)
	}

	logx.WithContext(ctx).Infof("market: primary provider %s failed for %s, falling back to %s: %v",
		a.primary.Name(), symbol, a.fallback.Name(), err)

	bundle, status, fbErr := a.fromFallback(ctx, symbol)
	if fbErr != nil {
		return nil, QuoteStatus{}, fmt.Errorf("%w: primary: %v; fallback: %v", ErrDataUnavailable, err, fbErr)
	}
	return bundle, status, nil
}

func (a *Aggregator) fromPrimary(ctx context.Context, symbol string) (*Bundle, QuoteStatus, error) {
	var (
		daily, weekly, monthly series.Series
		meta                   Meta
	)

	err := mr.Finish(
		func() error {
			var err error
			daily, meta, err = a.primary.Daily(ctx, symbol)
			return err
		},
		func() error {
			var err error
			weekly, err = a.primary.Weekly(ctx, symbol)
			return err
		},
		func() error {
			var err error
			monthly, err = a.primary.Monthly(ctx, symbol)
			return err
		},
	)
	if err != nil {
		return nil, QuoteStatus{}, err
	}
	if len(daily) == 0 {
		return nil, QuoteStatus{}, fmt.Errorf("%w: %s returned an empty daily series for %s",
			ErrProviderUnavailable, a.primary.Name(), symbol)
	}

	bundle := a.slice(symbol, daily, weekly, monthly)
	return bundle, NewQuoteStatus(meta.LastRefreshed, a.now()), nil
}

func (a *Aggregator) fromFallback(ctx context.Context, symbol string) (*Bundle, QuoteStatus, error) {
	daily, meta, err := a.fallback.Daily(ctx, symbol)
	if err != nil {
		return nil, QuoteStatus{}, err
	}
	if len(daily) == 0 {
		return nil, QuoteStatus{}, fmt.Errorf("%w: %s returned an empty daily series for %s",
			ErrProviderUnavailable, a.fallback.Name(), symbol)
	}

	lastRefreshed := meta.LastRefreshed
	if lastRefreshed == "" {
		lastRefreshed = daily[len(daily)-1].Date.Format(series.DateLayout)
	}

	bundle := a.slice(symbol, daily, series.ResampleWeekly(daily), series.ResampleMonthly(daily))
	return bundle, NewQuoteStatus(lastRefreshed, a.now()), nil
}

func (a *Aggregator) slice(symbol string, daily, weekly, monthly series.Series) *Bundle {
	now := a.now()
	return &Bundle{
		Symbol:     symbol,
		Day:        daily.LastN(dayWindowBars),
		Week:       weekly.LastN(weekWindowBars),
		Month:      monthly.LastN(monthWindowBars),
		ThreeMonth: daily.Since(now.AddDate(0, 0, -threeMonthDays)),
		SixMonth:   daily.Since(now.AddDate(0, 0, -sixMonthDays)),
		Year:       daily.Since(now.AddDate(0, 0, -yearDays)),
	}
}
