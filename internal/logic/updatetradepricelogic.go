package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/svc"
	"tickerlens-api/internal/types"
	"tickerlens-api/pkg/ledger"
)

type UpdateTradePriceLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUpdateTradePriceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateTradePriceLogic {
	return &UpdateTradePriceLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UpdateTradePriceLogic) UpdateTradePrice(req *types.UpdateTradePriceRequest) (*types.UpdateTradePriceResponse, error) {
	if req.ID == "" {
		return nil, errors.New("trade id is required")
	}
	if req.CurrentPrice <= 0 {
		return nil, errors.New("currentPrice must be positive")
	}

	err := l.svcCtx.Ledger.UpdateTradePrice(l.ctx, req.ID, req.CurrentPrice, req.EntryPrice)
	if err != nil {
		if errors.Is(err, ledger.ErrTradeNotFound) {
			return nil, errors.New("unknown trade " + req.ID)
		}
		l.Errorf("update price for trade %s: %v", req.ID, err)
		return nil, err
	}

	trade, _ := l.svcCtx.Ledger.TradeByID(req.ID)
	return &types.UpdateTradePriceResponse{Trade: toTradeView(trade)}, nil
}
