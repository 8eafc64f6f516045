package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"tickerlens-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/analyze",
				Handler: AnalyzeHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/trades",
				Handler: TradeHistoryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/trades/active",
				Handler: ActiveTradesHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/trades",
				Handler: ConfirmTradeHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/trades/:id/price",
				Handler: UpdateTradePriceHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/trades/:id/close",
				Handler: CloseTradeHandler(serverCtx),
			},
		},
	)
}
