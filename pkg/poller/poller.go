// Package poller periodically fetches the latest close price per monitored
// symbol and pushes updates to a callback, typically the trade ledger.
package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/pkg/market"
)

const (
	// DefaultInterval matches the five-minute cadence the ledger expects.
	DefaultInterval = 5 * time.Minute

	defaultQuoteTTL = 30 * time.Second
)

// Update is delivered to the callback on every successful fetch.
type Update struct {
	Symbol       string
	CurrentPrice float64
	Timestamp    time.Time
}

// Callback receives price updates for a monitored symbol.
type Callback func(Update)

// Poller owns a set of per-symbol monitoring loops. Instances are
// independent; tests construct their own rather than sharing global state.
type Poller struct {
	quotes   market.QuoteProvider
	interval time.Duration
	cache    *collection.Cache
	now      func() time.Time

	mu       sync.Mutex
	monitors map[string]context.CancelFunc
}

// Option configures a Poller.
type Option func(*settings)

type settings struct {
	interval time.Duration
	quoteTTL time.Duration
	now      func() time.Time
}

// WithInterval overrides the fetch cadence.
func WithInterval(d time.Duration) Option {
	return func(s *settings) {
		s.interval = d
	}
}

// WithQuoteTTL overrides how long one-shot quotes are cached.
func WithQuoteTTL(d time.Duration) Option {
	return func(s *settings) {
		s.quoteTTL = d
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// New constructs a poller over the given quote provider.
func New(quotes market.QuoteProvider, opts ...Option) (*Poller, error) {
	if quotes == nil {
		return nil, errors.New("poller: quote provider is required")
	}

	s := settings{
		interval: DefaultInterval,
		quoteTTL: defaultQuoteTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}

	cache, err := collection.NewCache(s.quoteTTL)
	if err != nil {
		return nil, err
	}

	return &Poller{
		quotes:   quotes,
		interval: s.interval,
		cache:    cache,
		now:      s.now,
		monitors: make(map[string]context.CancelFunc),
	}, nil
}

// StartMonitoring fetches the symbol's price immediately and then on every
// interval tick, invoking cb on each success. Fetch failures are logged and
// skipped without stopping the loop. Starting an already-monitored symbol
// replaces the previous loop.
func (p *Poller) StartMonitoring(ctx context.Context, symbol string, cb Callback) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errors.New("poller: symbol is required")
	}
	if cb == nil {
		return errors.New("poller: callback is required")
	}

	loopCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if prev, ok := p.monitors[symbol]; ok {
		prev()
	}
	p.monitors[symbol] = cancel
	p.mu.Unlock()

	go p.loop(loopCtx, symbol, cb)
	return nil
}

// StopMonitoring cancels the loop for symbol, if any.
func (p *Poller) StopMonitoring(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.monitors[symbol]; ok {
		cancel()
		delete(p.monitors, symbol)
	}
}

// StopAll cancels every active loop. Required at teardown so intervals do
// not leak past the owner's lifetime.
func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for symbol, cancel := range p.monitors {
		cancel()
		delete(p.monitors, symbol)
	}
}

// Monitored reports whether symbol currently has an active loop.
func (p *Poller) Monitored(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.monitors[symbol]
	return ok
}

// CurrentPrice fetches the latest close once, serving from the short-lived
// quote cache when fresh. It has no side effects beyond the fetch itself.
func (p *Poller) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, errors.New("poller: symbol is required")
	}
	return p.fetch(ctx, symbol)
}

func (p *Poller) loop(ctx context.Context, symbol string, cb Callback) {
	p.poll(ctx, symbol, cb)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, symbol, cb)
		}
	}
}

func (p *Poller) poll(ctx context.Context, symbol string, cb Callback) {
	price, err := p.fetch(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logx.WithContext(ctx).Errorf("poller: fetch %s failed, skipping tick: %v", symbol, err)
		return
	}
	cb(Update{
		Symbol:       symbol,
		CurrentPrice: price,
		Timestamp:    p.now().UTC(),
	})
}

func (p *Poller) fetch(ctx context.Context, symbol string) (float64, error) {
	if cached, ok := p.cache.Get(symbol); ok {
		if price, ok := cached.(float64); ok {
			return price, nil
		}
	}

	price, err := p.quotes.Quote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	p.cache.Set(symbol, price)
	return price, nil
}
