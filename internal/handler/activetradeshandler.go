package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"tickerlens-api/internal/logic"
	"tickerlens-api/internal/svc"
)

func ActiveTradesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewActiveTradesLogic(r.Context(), svcCtx)
		resp, err := l.ActiveTrades()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
