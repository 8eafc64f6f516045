package ledger

import (
	"math"
	"time"

	"tickerlens-api/pkg/advisor"
)

// Status is the lifecycle state of a tracked trade. Transitions are
// monotonic: pending -> confirmed -> closed, never backwards.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusClosed    Status = "closed"
)

// TrackedTrade is one user-confirmed recommendation under P&L tracking. The
// recommendation snapshot is immutable after confirmation; prices, status and
// the derived P&L fields are mutated only through Ledger operations.
type TrackedTrade struct {
	ID             string                 `json:"id" msgpack:"id"`
	Symbol         string                 `json:"symbol" msgpack:"symbol"`
	Recommendation advisor.Recommendation `json:"recommendation" msgpack:"recommendation"`
	ConfirmedAt    time.Time              `json:"confirmedAt" msgpack:"confirmed_at"`
	EntryPrice     *float64               `json:"entryPrice,omitempty" msgpack:"entry_price,omitempty"`
	CurrentPrice   *float64               `json:"currentPrice,omitempty" msgpack:"current_price,omitempty"`
	Status         Status                 `json:"status" msgpack:"status"`
	PnL            *float64               `json:"pnl,omitempty" msgpack:"pnl,omitempty"`
	PnLPercentage  *float64               `json:"pnlPercentage,omitempty" msgpack:"pnl_percentage,omitempty"`
	ClosedAt       *time.Time             `json:"closedAt,omitempty" msgpack:"closed_at,omitempty"`
}

// recomputePnL refreshes the derived P&L fields. P&L is intrinsic-value-only
// option accounting (no time value): for a call, max(0, current-strike) minus
// the premium paid; for a put, max(0, strike-current) minus the premium. It
// is defined only when entry price, current price and a call/put action are
// all present; otherwise both fields reset to nil.
func (t *TrackedTrade) recomputePnL() {
	t.PnL = nil
	t.PnLPercentage = nil

	if t.EntryPrice == nil || t.CurrentPrice == nil || t.Recommendation.Action == nil {
		return
	}

	optionType := t.Recommendation.Action.OptionType
	if optionType == "" {
		optionType = t.Recommendation.Type
	}

	strike := t.Recommendation.Action.StrikePrice
	entry := *t.EntryPrice
	current := *t.CurrentPrice

	var intrinsic float64
	switch optionType {
	case advisor.TypeCall:
		intrinsic = math.Max(0, current-strike)
	case advisor.TypePut:
		intrinsic = math.Max(0, strike-current)
	default:
		return
	}

	pnl := intrinsic - entry
	t.PnL = &pnl

	pct := 0.0
	if entry != 0 {
		pct = pnl / entry * 100
	}
	t.PnLPercentage = &pct
}

// History summarises the full trade collection.
type History struct {
	Trades           []TrackedTrade `json:"trades"`
	TotalTrades      int            `json:"totalTrades"`
	SuccessfulTrades int            `json:"successfulTrades"`
	SuccessRate      float64        `json:"successRate"`
}
