package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
)

type HistoryHandler struct {
	baseHandler
	svc *backend.Service
}

func NewHistoryHandler(svc *backend.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary List saved searches, newest first
// @Tags history
// @Param limit query int false "maximum entries (default 50)"
// @Router /api/search/history [get]
func (h *HistoryHandler) List(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.svc.History(stdCtx, id, ctx.QueryArgs().GetUintOrZero("limit"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	items := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		items = append(items, backend.HistoryWire(backend.ShapeLaravel, e))
	}
	h.respondList(ctx, items)
}

// @Summary Save a search
// @Tags history
// @Router /api/search/history [post]
func (h *HistoryHandler) Create(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}
	body, ok := h.decodeRecord(ctx)
	if !ok {
		return
	}
	entry := adapter.HistoryEntry{
		Query:   body.String("query"),
		Filters: adapter.FilterFromRecord(body.Child("filters")),
	}
	entry.ResultsCount, _ = body.Int("results_count", "resultsCount")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	saved, err := h.svc.SaveHistory(stdCtx, id, entry)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, backend.HistoryWire(backend.ShapeLaravel, *saved))
}

// @Summary Delete one saved search
// @Tags history
// @Router /api/search/history/{id} [delete]
func (h *HistoryHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}
	entryID, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.DeleteHistory(stdCtx, id, entryID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "Search deleted"})
}

// @Summary Delete every saved search of the user
// @Tags history
// @Router /api/search/history [delete]
func (h *HistoryHandler) Clear(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.svc.ClearHistory(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"deleted": deleted})
}
