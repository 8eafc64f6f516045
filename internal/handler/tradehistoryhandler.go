package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"tickerlens-api/internal/logic"
	"tickerlens-api/internal/svc"
)

func TradeHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewTradeHistoryLogic(r.Context(), svcCtx)
		resp, err := l.TradeHistory()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
