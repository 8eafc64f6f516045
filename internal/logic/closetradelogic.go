package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/svc"
	"tickerlens-api/internal/types"
	"tickerlens-api/pkg/ledger"
)

type CloseTradeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCloseTradeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CloseTradeLogic {
	return &CloseTradeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// CloseTrade closes the trade and stops price monitoring for its symbol once
// no other active trade needs it. Closing an already closed trade succeeds
// and keeps the original close timestamp.
func (l *CloseTradeLogic) CloseTrade(req *types.CloseTradeRequest) (*types.CloseTradeResponse, error) {
	if req.ID == "" {
		return nil, errors.New("trade id is required")
	}

	if err := l.svcCtx.Ledger.CloseTrade(l.ctx, req.ID); err != nil {
		if errors.Is(err, ledger.ErrTradeNotFound) {
			return nil, errors.New("unknown trade " + req.ID)
		}
		l.Errorf("close trade %s: %v", req.ID, err)
		return nil, err
	}

	trade, _ := l.svcCtx.Ledger.TradeByID(req.ID)
	if l.svcCtx.Poller != nil {
		if _, active := l.svcCtx.Ledger.TradeBySymbol(trade.Symbol); !active {
			l.svcCtx.Poller.StopMonitoring(trade.Symbol)
		}
	}

	return &types.CloseTradeResponse{Trade: toTradeView(trade)}, nil
}
