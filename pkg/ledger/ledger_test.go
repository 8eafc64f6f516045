package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tickerlens-api/pkg/advisor"
)

func callRecommendation(strike float64) advisor.Recommendation {
	return advisor.Recommendation{
		Type: advisor.TypeCall,
		Action: &advisor.Action{
			StrikePrice: strike,
			OptionType:  advisor.TypeCall,
		},
		Reasoning: "test",
	}
}

func putRecommendation(strike float64) advisor.Recommendation {
	return advisor.Recommendation{
		Type: advisor.TypePut,
		Action: &advisor.Action{
			StrikePrice: strike,
			OptionType:  advisor.TypePut,
		},
		Reasoning: "test",
	}
}

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "trades.bin"))
	require.NoError(t, err)
	l, err := NewLedger(context.Background(), store, opts...)
	require.NoError(t, err)
	return l
}

func fptr(v float64) *float64 { return &v }

func TestConfirmTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("with entry price starts confirmed", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "aapl", callRecommendation(150), fptr(2.50))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		trade, ok := l.TradeBySymbol("AAPL")
		require.True(t, ok)
		require.Equal(t, StatusConfirmed, trade.Status)
		require.Equal(t, "AAPL", trade.Symbol)
		require.NotNil(t, trade.EntryPrice)
		require.Equal(t, 2.50, *trade.EntryPrice)
	})

	t.Run("without entry price starts pending", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "MSFT", callRecommendation(400), nil)
		require.NoError(t, err)

		trade, ok := l.TradeBySymbol("MSFT")
		require.True(t, ok)
		require.Equal(t, id, trade.ID)
		require.Equal(t, StatusPending, trade.Status)
		require.Nil(t, trade.EntryPrice)
	})

	t.Run("colliding timestamps get suffixed ids", func(t *testing.T) {
		fixed := time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC)
		l := newTestLedger(t, WithClock(func() time.Time { return fixed }))

		id1, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(150), nil)
		require.NoError(t, err)
		id2, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(155), nil)
		require.NoError(t, err)
		require.NotEqual(t, id1, id2)
		require.Equal(t, id1+"-1", id2)
	})
}

func TestUpdateTradePricePnL(t *testing.T) {
	ctx := context.Background()

	t.Run("call intrinsic value", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(2.00))
		require.NoError(t, err)

		require.NoError(t, l.UpdateTradePrice(ctx, id, 105, nil))

		trade, _ := l.TradeBySymbol("AAPL")
		require.NotNil(t, trade.PnL)
		require.InDelta(t, 3.00, *trade.PnL, 1e-9)
		require.NotNil(t, trade.PnLPercentage)
		require.InDelta(t, 150.0, *trade.PnLPercentage, 1e-9)
	})

	t.Run("put out of the money loses the premium", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", putRecommendation(100), fptr(2.00))
		require.NoError(t, err)

		require.NoError(t, l.UpdateTradePrice(ctx, id, 105, nil))

		trade, _ := l.TradeBySymbol("AAPL")
		require.NotNil(t, trade.PnL)
		require.InDelta(t, -2.00, *trade.PnL, 1e-9)
		require.InDelta(t, -100.0, *trade.PnLPercentage, 1e-9)
	})

	t.Run("zero entry price yields zero percentage", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(0))
		require.NoError(t, err)

		require.NoError(t, l.UpdateTradePrice(ctx, id, 105, nil))

		trade, _ := l.TradeBySymbol("AAPL")
		require.InDelta(t, 5.00, *trade.PnL, 1e-9)
		require.Equal(t, 0.0, *trade.PnLPercentage)
	})

	t.Run("entry price confirms a pending trade", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), nil)
		require.NoError(t, err)

		require.NoError(t, l.UpdateTradePrice(ctx, id, 103, fptr(1.50)))

		trade, _ := l.TradeBySymbol("AAPL")
		require.Equal(t, StatusConfirmed, trade.Status)
		require.InDelta(t, 1.50, *trade.PnL, 1e-9)
	})

	t.Run("no action recommendation has undefined pnl", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", advisor.Recommendation{Type: advisor.TypeNoAction}, fptr(1.00))
		require.NoError(t, err)

		require.NoError(t, l.UpdateTradePrice(ctx, id, 105, nil))

		trade, _ := l.TradeBySymbol("AAPL")
		require.Nil(t, trade.PnL)
		require.Nil(t, trade.PnLPercentage)
	})

	t.Run("unknown id", func(t *testing.T) {
		l := newTestLedger(t)
		err := l.UpdateTradePrice(ctx, "GHOST-1", 10, nil)
		require.ErrorIs(t, err, ErrTradeNotFound)
	})
}

func TestUpdateSymbolPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("advances every active trade of the symbol", func(t *testing.T) {
		current := time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC)
		l := newTestLedger(t, WithClock(func() time.Time {
			current = current.Add(time.Millisecond)
			return current
		}))

		first, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(150), fptr(2))
		require.NoError(t, err)
		second, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(160), fptr(3))
		require.NoError(t, err)
		other, err := l.ConfirmTrade(ctx, "MSFT", callRecommendation(400), fptr(5))
		require.NoError(t, err)

		require.NoError(t, l.UpdateSymbolPrice(ctx, "aapl", 155))

		firstTrade, _ := l.TradeByID(first)
		require.NotNil(t, firstTrade.CurrentPrice)
		require.InDelta(t, 155, *firstTrade.CurrentPrice, 1e-9)
		require.InDelta(t, 3, *firstTrade.PnL, 1e-9)

		secondTrade, _ := l.TradeByID(second)
		require.NotNil(t, secondTrade.CurrentPrice)
		require.InDelta(t, 155, *secondTrade.CurrentPrice, 1e-9)
		require.InDelta(t, -3, *secondTrade.PnL, 1e-9)

		otherTrade, _ := l.TradeByID(other)
		require.Nil(t, otherTrade.CurrentPrice)
	})

	t.Run("skips closed trades", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(150), fptr(2))
		require.NoError(t, err)
		require.NoError(t, l.CloseTrade(ctx, id))

		require.NoError(t, l.UpdateSymbolPrice(ctx, "AAPL", 155))

		trade, _ := l.TradeByID(id)
		require.Nil(t, trade.CurrentPrice)
	})

	t.Run("no active trade is a no-op", func(t *testing.T) {
		l := newTestLedger(t)
		require.NoError(t, l.UpdateSymbolPrice(ctx, "GHOST", 10))
	})
}

func TestCloseTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("sets closedAt once", func(t *testing.T) {
		current := time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC)
		l := newTestLedger(t, WithClock(func() time.Time { return current }))

		id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(2))
		require.NoError(t, err)

		require.NoError(t, l.CloseTrade(ctx, id))
		first := l.TradeHistory().Trades[0]
		require.Equal(t, StatusClosed, first.Status)
		require.NotNil(t, first.ClosedAt)
		firstClosedAt := *first.ClosedAt

		// advance the clock; re-closing must not move the timestamp
		current = current.Add(time.Hour)
		require.NoError(t, l.CloseTrade(ctx, id))
		again := l.TradeHistory().Trades[0]
		require.Equal(t, firstClosedAt, *again.ClosedAt)
	})

	t.Run("closed trades leave the active set", func(t *testing.T) {
		l := newTestLedger(t)
		id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(2))
		require.NoError(t, err)
		require.Len(t, l.ActiveTrades(), 1)

		require.NoError(t, l.CloseTrade(ctx, id))
		require.Empty(t, l.ActiveTrades())

		_, ok := l.TradeBySymbol("AAPL")
		require.False(t, ok)
	})

	t.Run("unknown id", func(t *testing.T) {
		l := newTestLedger(t)
		require.ErrorIs(t, l.CloseTrade(ctx, "GHOST-1"), ErrTradeNotFound)
	})
}

func TestTradeHistory(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	// winner: call strike 100, entry 2, price 105 => pnl +3
	winner, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(2))
	require.NoError(t, err)
	require.NoError(t, l.UpdateTradePrice(ctx, winner, 105, nil))

	// loser: put strike 100, entry 2, price 105 => pnl -2
	loser, err := l.ConfirmTrade(ctx, "MSFT", putRecommendation(100), fptr(2))
	require.NoError(t, err)
	require.NoError(t, l.UpdateTradePrice(ctx, loser, 105, nil))

	// undefined pnl: never priced
	_, err = l.ConfirmTrade(ctx, "NVDA", callRecommendation(500), nil)
	require.NoError(t, err)

	history := l.TradeHistory()
	require.Equal(t, 3, history.TotalTrades)
	require.Equal(t, 1, history.SuccessfulTrades)
	require.InDelta(t, 33.33, history.SuccessRate, 0.01)
}

func TestLedgerPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trades.bin")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	l, err := NewLedger(ctx, store)
	require.NoError(t, err)

	id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(2))
	require.NoError(t, err)
	require.NoError(t, l.UpdateTradePrice(ctx, id, 105, nil))

	// a fresh ledger over the same path sees the persisted state
	reloaded, err := NewLedger(ctx, store)
	require.NoError(t, err)

	trade, ok := reloaded.TradeBySymbol("AAPL")
	require.True(t, ok)
	require.Equal(t, id, trade.ID)
	require.Equal(t, StatusConfirmed, trade.Status)
	require.NotNil(t, trade.PnL)
	require.InDelta(t, 3.00, *trade.PnL, 1e-9)
	require.Equal(t,
		l.TradeHistory().Trades[0].ConfirmedAt.Unix(),
		reloaded.TradeHistory().Trades[0].ConfirmedAt.Unix())
}

type failingStore struct {
	trades  []TrackedTrade
	saveErr error
}

func (s *failingStore) Load(ctx context.Context) ([]TrackedTrade, error) {
	return s.trades, nil
}

func (s *failingStore) Save(ctx context.Context, trades []TrackedTrade) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.trades = trades
	return nil
}

func TestMutationsPersistBeforeMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}

	l, err := NewLedger(ctx, store)
	require.NoError(t, err)

	id, err := l.ConfirmTrade(ctx, "AAPL", callRecommendation(100), fptr(2))
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")

	_, err = l.ConfirmTrade(ctx, "MSFT", callRecommendation(400), fptr(1))
	require.Error(t, err)
	_, ok := l.TradeBySymbol("MSFT")
	require.False(t, ok, "failed confirm must not appear in memory")

	err = l.UpdateTradePrice(ctx, id, 105, nil)
	require.Error(t, err)
	trade, _ := l.TradeBySymbol("AAPL")
	require.Nil(t, trade.CurrentPrice, "failed update must not appear in memory")

	err = l.CloseTrade(ctx, id)
	require.Error(t, err)
	trade, _ = l.TradeBySymbol("AAPL")
	require.Equal(t, StatusConfirmed, trade.Status, "failed close must not appear in memory")
}
