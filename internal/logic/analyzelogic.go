package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/svc"
	"tickerlens-api/internal/types"
	"tickerlens-api/pkg/market"
)

type AnalyzeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAnalyzeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AnalyzeLogic {
	return &AnalyzeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *AnalyzeLogic) Analyze(req *types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}

	report, err := l.svcCtx.Analyzer.Analyze(l.ctx, symbol)
	if err != nil {
		l.Errorf("analyze %s: %v", symbol, err)
		switch {
		case errors.Is(err, market.ErrInvalidSymbol):
			return nil, errors.New("unknown symbol " + symbol)
		case errors.Is(err, market.ErrRateLimited):
			return nil, errors.New("market data rate limited, retry later")
		case errors.Is(err, market.ErrDataUnavailable):
			return nil, errors.New("no market data available for " + symbol)
		default:
			return nil, err
		}
	}

	resp := &types.AnalyzeResponse{
		Symbol:        report.Symbol,
		LastRefreshed: report.Status.LastRefreshed,
		IsStale:       report.Status.IsStale,
		Summary:       report.Summary,
		Source:        report.Source,
		RawText:       report.RawText,
		Notice:        report.Notice,
	}
	if report.Verdict != nil {
		view := toRecommendationView(*report.Verdict)
		resp.Recommendation = &view
	}
	return resp, nil
}
