package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
)

type AnalyticsHandler struct {
	baseHandler
	svc *backend.Service
}

func NewAnalyticsHandler(svc *backend.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary Dashboard figures of the current user
// @Tags analytics
// @Router /api/analytics [get]
func (h *AnalyticsHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	a, err := h.svc.Analytics(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, backend.AnalyticsWire(a))
}
