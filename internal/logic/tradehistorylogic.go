package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/svc"
	"tickerlens-api/internal/types"
)

type TradeHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTradeHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TradeHistoryLogic {
	return &TradeHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *TradeHistoryLogic) TradeHistory() (*types.TradeHistoryResponse, error) {
	history := l.svcCtx.Ledger.TradeHistory()
	return &types.TradeHistoryResponse{
		Trades:           toTradeViews(history.Trades),
		TotalTrades:      history.TotalTrades,
		SuccessfulTrades: history.SuccessfulTrades,
		SuccessRate:      history.SuccessRate,
	}, nil
}
