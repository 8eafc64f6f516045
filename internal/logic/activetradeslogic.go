package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/svc"
	"tickerlens-api/internal/types"
)

type ActiveTradesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewActiveTradesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ActiveTradesLogic {
	return &ActiveTradesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ActiveTradesLogic) ActiveTrades() (*types.ActiveTradesResponse, error) {
	return &types.ActiveTradesResponse{
		Trades: toTradeViews(l.svcCtx.Ledger.ActiveTrades()),
	}, nil
}
