package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/svc"
	"tickerlens-api/internal/types"
	"tickerlens-api/pkg/poller"
)

type ConfirmTradeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewConfirmTradeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ConfirmTradeLogic {
	return &ConfirmTradeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ConfirmTrade records a recommendation in the ledger and starts price
// monitoring for its symbol. A symbol with an active trade is rejected so a
// second confirmation cannot hijack the first trade's price feed. The
// monitor callback feeds every poll result back into the ledger so P&L
// stays current without client involvement.
func (l *ConfirmTradeLogic) ConfirmTrade(req *types.ConfirmTradeRequest) (*types.ConfirmTradeResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if req.Recommendation.Type == "" {
		return nil, errors.New("recommendation type is required")
	}
	if existing, ok := l.svcCtx.Ledger.TradeBySymbol(symbol); ok {
		return nil, errors.New("symbol " + symbol + " is already tracked by trade " + existing.ID)
	}

	rec := fromRecommendationView(req.Recommendation)
	tradeID, err := l.svcCtx.Ledger.ConfirmTrade(l.ctx, symbol, rec, req.EntryPrice)
	if err != nil {
		l.Errorf("confirm trade %s: %v", symbol, err)
		return nil, err
	}

	if l.svcCtx.Poller != nil {
		ledgerRef := l.svcCtx.Ledger
		err := l.svcCtx.Poller.StartMonitoring(context.Background(), symbol, func(u poller.Update) {
			if err := ledgerRef.UpdateSymbolPrice(context.Background(), u.Symbol, u.CurrentPrice); err != nil {
				logx.Errorf("price update for %s: %v", u.Symbol, err)
			}
		})
		if err != nil {
			// Tracking without live prices is still useful, so a monitor
			// failure does not fail the confirmation.
			l.Errorf("start monitoring %s: %v", symbol, err)
		}
	}

	trade, _ := l.svcCtx.Ledger.TradeByID(tradeID)
	return &types.ConfirmTradeResponse{
		TradeID: tradeID,
		Trade:   toTradeView(trade),
	}, nil
}
