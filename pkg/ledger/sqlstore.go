package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"tickerlens-api/pkg/advisor"
)

// SQLStore persists the collection in Postgres. Like the file store, each
// save replaces the whole collection, inside one transaction so readers never
// observe a partial write.
type SQLStore struct {
	conn sqlx.SqlConn
}

// NewSQLStore wraps an existing connection. The tracked_trades table is
// expected to exist (see scripts/schema.sql).
func NewSQLStore(conn sqlx.SqlConn) *SQLStore {
	return &SQLStore{conn: conn}
}

type tradeRow struct {
	Id             string          `db:"id"`
	Symbol         string          `db:"symbol"`
	Recommendation []byte          `db:"recommendation"`
	ConfirmedAt    time.Time       `db:"confirmed_at"`
	EntryPrice     sql.NullFloat64 `db:"entry_price"`
	CurrentPrice   sql.NullFloat64 `db:"current_price"`
	Status         string          `db:"status"`
	Pnl            sql.NullFloat64 `db:"pnl"`
	PnlPercentage  sql.NullFloat64 `db:"pnl_percentage"`
	ClosedAt       sql.NullTime    `db:"closed_at"`
}

func (s *SQLStore) Load(ctx context.Context) ([]TrackedTrade, error) {
	const query = `
SELECT id, symbol, recommendation, confirmed_at, entry_price, current_price,
       status, pnl, pnl_percentage, closed_at
FROM public.tracked_trades
ORDER BY confirmed_at ASC`

	var rows []tradeRow
	if err := s.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ledger: load trades: %w", err)
	}

	trades := make([]TrackedTrade, 0, len(rows))
	for i := range rows {
		trade, err := rowToTrade(&rows[i])
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (s *SQLStore) Save(ctx context.Context, trades []TrackedTrade) error {
	const insert = `
INSERT INTO public.tracked_trades (
    id, symbol, recommendation, confirmed_at, entry_price, current_price,
    status, pnl, pnl_percentage, closed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	err := s.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		if _, err := session.ExecCtx(ctx, `DELETE FROM public.tracked_trades`); err != nil {
			return err
		}
		for i := range trades {
			t := &trades[i]
			rec, err := json.Marshal(t.Recommendation)
			if err != nil {
				return fmt.Errorf("encode recommendation for %s: %w", t.ID, err)
			}
			_, err = session.ExecCtx(ctx, insert,
				t.ID, t.Symbol, rec, t.ConfirmedAt,
				nullFloat(t.EntryPrice), nullFloat(t.CurrentPrice),
				string(t.Status),
				nullFloat(t.PnL), nullFloat(t.PnLPercentage),
				nullTime(t.ClosedAt),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger: save trades: %w", err)
	}
	return nil
}

func rowToTrade(row *tradeRow) (TrackedTrade, error) {
	var rec advisor.Recommendation
	if len(row.Recommendation) > 0 {
		if err := json.Unmarshal(row.Recommendation, &rec); err != nil {
			return TrackedTrade{}, fmt.Errorf("ledger: decode recommendation for %s: %w", row.Id, err)
		}
	}

	trade := TrackedTrade{
		ID:             row.Id,
		Symbol:         row.Symbol,
		Recommendation: rec,
		ConfirmedAt:    row.ConfirmedAt,
		Status:         Status(row.Status),
	}
	if row.EntryPrice.Valid {
		v := row.EntryPrice.Float64
		trade.EntryPrice = &v
	}
	if row.CurrentPrice.Valid {
		v := row.CurrentPrice.Float64
		trade.CurrentPrice = &v
	}
	if row.Pnl.Valid {
		v := row.Pnl.Float64
		trade.PnL = &v
	}
	if row.PnlPercentage.Valid {
		v := row.PnlPercentage.Float64
		trade.PnLPercentage = &v
	}
	if row.ClosedAt.Valid {
		v := row.ClosedAt.Time
		trade.ClosedAt = &v
	}
	return trade, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
