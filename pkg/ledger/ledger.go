package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tickerlens-api/pkg/advisor"
)

// ErrTradeNotFound is returned when an operation references an unknown trade id.
var ErrTradeNotFound = errors.New("ledger: trade not found")

// Ledger owns the collection of tracked trades. Every mutation persists the
// whole collection first and updates in-memory state only after the write
// succeeds, so memory is always a cache of the last durable write.
type Ledger struct {
	mu     sync.Mutex
	store  Store
	trades []TrackedTrade
	now    func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger loads the persisted collection and returns a ready ledger.
func NewLedger(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: store is required")
	}

	trades, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		store:  store,
		trades: trades,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// ConfirmTrade records a user-confirmed recommendation and returns its id.
// The trade starts confirmed when an entry price is supplied, pending
// otherwise.
func (l *Ledger) ConfirmTrade(ctx context.Context, symbol string, rec advisor.Recommendation, entryPrice *float64) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", errors.New("ledger: symbol is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	trade := TrackedTrade{
		ID:             l.nextID(symbol),
		Symbol:         symbol,
		Recommendation: rec,
		ConfirmedAt:    l.now().UTC(),
		Status:         StatusPending,
	}
	if entryPrice != nil {
		v := *entryPrice
		trade.EntryPrice = &v
		trade.Status = StatusConfirmed
	}

	next := l.snapshot()
	next = append(next, trade)
	if err := l.store.Save(ctx, next); err != nil {
		return "", err
	}
	l.trades = next
	return trade.ID, nil
}

// UpdateTradePrice sets the latest price for a trade and recomputes P&L. A
// pending trade given an entry price transitions to confirmed.
func (l *Ledger) UpdateTradePrice(ctx context.Context, tradeID string, currentPrice float64, entryPrice *float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.snapshot()
	idx := indexByID(next, tradeID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTradeNotFound, tradeID)
	}

	trade := &next[idx]
	price := currentPrice
	trade.CurrentPrice = &price
	if entryPrice != nil && trade.Status == StatusPending {
		v := *entryPrice
		trade.EntryPrice = &v
		trade.Status = StatusConfirmed
	}
	trade.recomputePnL()

	if err := l.store.Save(ctx, next); err != nil {
		return err
	}
	l.trades = next
	return nil
}

// UpdateSymbolPrice applies a fresh price to every non-closed trade for
// symbol and recomputes their P&L. Poll loops use it so that all trades
// tracking one symbol advance together; with no active trade it is a no-op.
func (l *Ledger) UpdateSymbolPrice(ctx context.Context, symbol string, currentPrice float64) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.snapshot()
	touched := false
	for i := range next {
		if next[i].Symbol != symbol || next[i].Status == StatusClosed {
			continue
		}
		trade := &next[i]
		price := currentPrice
		trade.CurrentPrice = &price
		trade.recomputePnL()
		touched = true
	}
	if !touched {
		return nil
	}

	if err := l.store.Save(ctx, next); err != nil {
		return err
	}
	l.trades = next
	return nil
}

// CloseTrade transitions a trade to closed and stamps closedAt once. Closing
// an already-closed trade is a no-op; the original closedAt is preserved.
func (l *Ledger) CloseTrade(ctx context.Context, tradeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.snapshot()
	idx := indexByID(next, tradeID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTradeNotFound, tradeID)
	}

	trade := &next[idx]
	if trade.Status == StatusClosed {
		return nil
	}
	closedAt := l.now().UTC()
	trade.Status = StatusClosed
	trade.ClosedAt = &closedAt

	if err := l.store.Save(ctx, next); err != nil {
		return err
	}
	l.trades = next
	return nil
}

// TradeHistory reports the full collection with success accounting. A trade
// counts as successful when its P&L is defined and positive.
func (l *Ledger) TradeHistory() History {
	l.mu.Lock()
	defer l.mu.Unlock()

	trades := l.snapshot()
	successful := 0
	for i := range trades {
		if trades[i].PnL != nil && *trades[i].PnL > 0 {
			successful++
		}
	}

	rate := 0.0
	if len(trades) > 0 {
		rate = float64(successful) / float64(len(trades)) * 100
	}
	return History{
		Trades:           trades,
		TotalTrades:      len(trades),
		SuccessfulTrades: successful,
		SuccessRate:      rate,
	}
}

// ActiveTrades returns every trade not yet closed.
func (l *Ledger) ActiveTrades() []TrackedTrade {
	l.mu.Lock()
	defer l.mu.Unlock()

	var active []TrackedTrade
	for i := range l.trades {
		if l.trades[i].Status != StatusClosed {
			active = append(active, l.trades[i])
		}
	}
	return active
}

// TradeByID returns the trade with the given id.
func (l *Ledger) TradeByID(id string) (TrackedTrade, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexByID(l.trades, id)
	if idx < 0 {
		return TrackedTrade{}, false
	}
	return l.trades[idx], true
}

// TradeBySymbol returns the first non-closed trade for symbol. Used to
// prevent tracking the same symbol twice concurrently.
func (l *Ledger) TradeBySymbol(symbol string) (TrackedTrade, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.trades {
		if l.trades[i].Symbol == symbol && l.trades[i].Status != StatusClosed {
			return l.trades[i], true
		}
	}
	return TrackedTrade{}, false
}

// nextID builds a symbol-plus-timestamp id, suffixed on collision. Callers
// hold l.mu.
func (l *Ledger) nextID(symbol string) string {
	base := fmt.Sprintf("%s-%d", symbol, l.now().UnixMilli())
	id := base
	for n := 1; indexByID(l.trades, id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func (l *Ledger) snapshot() []TrackedTrade {
	next := make([]TrackedTrade, len(l.trades))
	copy(next, l.trades)
	return next
}

func indexByID(trades []TrackedTrade, id string) int {
	for i := range trades {
		if trades[i].ID == id {
			return i
		}
	}
	return -1
}
