package logic

import (
	"time"

	"tickerlens-api/internal/types"
	"tickerlens-api/pkg/advisor"
	"tickerlens-api/pkg/ledger"
)

func toRecommendationView(rec advisor.Recommendation) types.RecommendationView {
	view := types.RecommendationView{
		Type:       rec.Type,
		Confidence: rec.Confidence,
		Reasoning:  rec.Reasoning,
	}
	if rec.Action != nil {
		view.Action = &types.ActionView{
			StrikePrice:      rec.Action.StrikePrice,
			OptionType:       rec.Action.OptionType,
			TargetPrice:      rec.Action.TargetPrice,
			PriceType:        rec.Action.PriceType,
			ExpirationDate:   rec.Action.ExpirationDate,
			ExpirationReason: rec.Action.ExpirationReason,
		}
	}
	return view
}

func fromRecommendationView(view types.RecommendationView) advisor.Recommendation {
	rec := advisor.Recommendation{
		Type:       view.Type,
		Confidence: view.Confidence,
		Reasoning:  view.Reasoning,
	}
	if view.Action != nil {
		rec.Action = &advisor.Action{
			StrikePrice:      view.Action.StrikePrice,
			OptionType:       view.Action.OptionType,
			TargetPrice:      view.Action.TargetPrice,
			PriceType:        view.Action.PriceType,
			ExpirationDate:   view.Action.ExpirationDate,
			ExpirationReason: view.Action.ExpirationReason,
		}
	}
	return rec
}

func toTradeView(trade ledger.TrackedTrade) types.TradeView {
	view := types.TradeView{
		ID:             trade.ID,
		Symbol:         trade.Symbol,
		Recommendation: toRecommendationView(trade.Recommendation),
		ConfirmedAt:    trade.ConfirmedAt.Format(time.RFC3339),
		EntryPrice:     trade.EntryPrice,
		CurrentPrice:   trade.CurrentPrice,
		Status:         string(trade.Status),
		PnL:            trade.PnL,
		PnLPercentage:  trade.PnLPercentage,
	}
	if trade.ClosedAt != nil {
		view.ClosedAt = trade.ClosedAt.Format(time.RFC3339)
	}
	return view
}

func toTradeViews(trades []ledger.TrackedTrade) []types.TradeView {
	views := make([]types.TradeView, 0, len(trades))
	for _, trade := range trades {
		views = append(views, toTradeView(trade))
	}
	return views
}
