package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tickerlens-api/pkg/series"
)

type fakePrimary struct {
	daily, weekly, monthly series.Series
	meta                   Meta
	err                    error
}

func (f *fakePrimary) Name() string { return "fake-primary" }

func (f *fakePrimary) Daily(context.Context, string) (series.Series, Meta, error) {
	return f.daily, f.meta, f.err
}

func (f *fakePrimary) Weekly(context.Context, string) (series.Series, error) {
	return f.weekly, f.err
}

func (f *fakePrimary) Monthly(context.Context, string) (series.Series, error) {
	return f.monthly, f.err
}

type fakeFallback struct {
	daily series.Series
	meta  Meta
	err   error
}

func (f *fakeFallback) Name() string { return "fake-fallback" }

func (f *fakeFallback) Daily(context.Context, string) (series.Series, Meta, error) {
	return f.daily, f.meta, f.err
}

// tradingDays builds n consecutive weekday bars ending at end.
func tradingDays(end time.Time, n int) series.Series {
	var out series.Series
	d := series.Day(end)
	for len(out) < n {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(series.Series{{
				Date: d, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000,
			}}, out...)
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

func TestFetchBundlePrimaryPath(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) // Monday
	daily := tradingDays(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), 300)

	primary := &fakePrimary{
		daily:   daily,
		weekly:  series.ResampleWeekly(daily),
		monthly: series.ResampleMonthly(daily),
		meta:    Meta{LastRefreshed: "2025-03-07"},
	}
	agg := NewAggregator(primary, nil, WithClock(func() time.Time { return now }))

	bundle, status, err := agg.FetchBundle(context.Background(), "AAPL")
	require.NoError(t, err)
	require.False(t, status.IsStale)
	require.Equal(t, "2025-03-07", status.LastRefreshed)

	require.Len(t, bundle.Day, 30)
	require.Len(t, bundle.Week, 12)
	require.Len(t, bundle.Month, 12)
	require.NotEmpty(t, bundle.ThreeMonth)
	require.True(t, len(bundle.ThreeMonth) <= len(bundle.SixMonth))
	require.True(t, len(bundle.SixMonth) <= len(bundle.Year))

	for _, p := range bundle.ThreeMonth {
		require.False(t, p.Date.Before(series.Day(now.AddDate(0, 0, -90))))
	}

	views := bundle.Views()
	require.Equal(t, []string{"1D", "1W", "1M", "3M", "6M", "1Y"}, []string{
		views[0].Timeframe, views[1].Timeframe, views[2].Timeframe,
		views[3].Timeframe, views[4].Timeframe, views[5].Timeframe,
	})
}

func TestFetchBundleFallbackPath(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	daily := tradingDays(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), 300)

	primary := &fakePrimary{err: ErrRateLimited}
	fallback := &fakeFallback{daily: daily}
	agg := NewAggregator(primary, fallback, WithClock(func() time.Time { return now }))

	bundle, status, err := agg.FetchBundle(context.Background(), "AAPL")
	require.NoError(t, err)

	// Weekly/monthly views are derived from daily data with volume preserved.
	require.Len(t, bundle.Week, 12)
	require.Len(t, bundle.Month, 12)
	require.Equal(t, daily.TotalVolume(), series.ResampleWeekly(daily).TotalVolume())

	// Freshness falls back to the final daily bar's date.
	require.Equal(t, "2025-03-07", status.LastRefreshed)
	require.False(t, status.IsStale)
}

func TestFetchBundleInvalidSymbolSurfaces(t *testing.T) {
	primary := &fakePrimary{err: ErrInvalidSymbol}
	fallback := &fakeFallback{daily: tradingDays(time.Now(), 10)}
	agg := NewAggregator(primary, fallback)

	_, _, err := agg.FetchBundle(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrInvalidSymbol)
}

func TestFetchBundleBothProvidersFail(t *testing.T) {
	agg := NewAggregator(&fakePrimary{err: ErrProviderUnavailable}, &fakeFallback{err: ErrProviderUnavailable})

	_, _, err := agg.FetchBundle(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrDataUnavailable)
}

func TestFetchBundleEmptyFallbackIsNotABundle(t *testing.T) {
	agg := NewAggregator(&fakePrimary{err: ErrProviderUnavailable}, &fakeFallback{daily: series.Series{}})

	_, _, err := agg.FetchBundle(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrDataUnavailable)
}
