package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeQuotes struct {
	calls   atomic.Int64
	failFor atomic.Int64
	price   atomic.Value
}

func newFakeQuotes(price float64) *fakeQuotes {
	f := &fakeQuotes{}
	f.price.Store(price)
	return f
}

func (f *fakeQuotes) Name() string { return "fake" }

func (f *fakeQuotes) Quote(ctx context.Context, symbol string) (float64, error) {
	f.calls.Add(1)
	if f.failFor.Load() > 0 {
		f.failFor.Add(-1)
		return 0, errors.New("quote unavailable")
	}
	return f.price.Load().(float64), nil
}

func TestStartMonitoringDeliversImmediately(t *testing.T) {
	quotes := newFakeQuotes(101.5)
	p, err := New(quotes, WithInterval(time.Hour))
	require.NoError(t, err)
	defer p.StopAll()

	updates := make(chan Update, 1)
	err = p.StartMonitoring(context.Background(), "aapl", func(u Update) {
		updates <- u
	})
	require.NoError(t, err)

	select {
	case u := <-updates:
		require.Equal(t, "AAPL", u.Symbol)
		require.Equal(t, 101.5, u.CurrentPrice)
		require.False(t, u.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate update")
	}
	require.True(t, p.Monitored("AAPL"))
}

func TestMonitoringSurvivesFetchFailures(t *testing.T) {
	quotes := newFakeQuotes(55.0)
	quotes.failFor.Store(2)

	p, err := New(quotes, WithInterval(20*time.Millisecond))
	require.NoError(t, err)
	defer p.StopAll()

	updates := make(chan Update, 4)
	require.NoError(t, p.StartMonitoring(context.Background(), "MSFT", func(u Update) {
		updates <- u
	}))

	// first two fetches fail; the loop keeps ticking until one succeeds
	select {
	case u := <-updates:
		require.Equal(t, 55.0, u.CurrentPrice)
	case <-time.After(2 * time.Second):
		t.Fatal("no update after transient failures")
	}
	require.GreaterOrEqual(t, quotes.calls.Load(), int64(3))
}

func TestStopMonitoring(t *testing.T) {
	quotes := newFakeQuotes(10)
	p, err := New(quotes, WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	var count atomic.Int64
	require.NoError(t, p.StartMonitoring(context.Background(), "AAPL", func(Update) {
		count.Add(1)
	}))

	require.Eventually(t, func() bool { return count.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	p.StopMonitoring("AAPL")
	require.False(t, p.Monitored("AAPL"))

	settled := count.Load()
	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(t, count.Load(), settled+1, "updates must stop after StopMonitoring")
}

func TestStopAll(t *testing.T) {
	quotes := newFakeQuotes(10)
	p, err := New(quotes, WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, p.StartMonitoring(context.Background(), "AAPL", func(Update) {}))
	require.NoError(t, p.StartMonitoring(context.Background(), "MSFT", func(Update) {}))
	require.True(t, p.Monitored("AAPL"))
	require.True(t, p.Monitored("MSFT"))

	p.StopAll()
	require.False(t, p.Monitored("AAPL"))
	require.False(t, p.Monitored("MSFT"))
}

func TestCurrentPriceUsesCache(t *testing.T) {
	quotes := newFakeQuotes(42.0)
	p, err := New(quotes, WithQuoteTTL(time.Minute))
	require.NoError(t, err)

	price, err := p.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 42.0, price)

	// second read is served from the cache
	quotes.price.Store(99.0)
	price, err = p.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 42.0, price)
	require.Equal(t, int64(1), quotes.calls.Load())
}

func TestCurrentPriceErrorsPropagate(t *testing.T) {
	quotes := newFakeQuotes(42.0)
	quotes.failFor.Store(1)

	p, err := New(quotes, WithQuoteTTL(time.Minute))
	require.NoError(t, err)

	_, err = p.CurrentPrice(context.Background(), "AAPL")
	require.Error(t, err)
}

func TestRestartReplacesLoop(t *testing.T) {
	quotes := newFakeQuotes(10)
	p, err := New(quotes, WithInterval(time.Hour))
	require.NoError(t, err)
	defer p.StopAll()

	first := make(chan Update, 1)
	require.NoError(t, p.StartMonitoring(context.Background(), "AAPL", func(u Update) { first <- u }))
	<-first

	second := make(chan Update, 1)
	require.NoError(t, p.StartMonitoring(context.Background(), "AAPL", func(u Update) { second <- u }))

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement loop did not start")
	}
	require.True(t, p.Monitored("AAPL"))
}
