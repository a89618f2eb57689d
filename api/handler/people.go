package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
)

type PeopleHandler struct {
	baseHandler
	svc *backend.Service
}

func NewPeopleHandler(svc *backend.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *PeopleHandler {
	return &PeopleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary Search the directory
// @Description Hits are ordered by relevance_score, highest first.
// @Tags people
// @Router /api/people/search [post]
func (h *PeopleHandler) Search(ctx *fasthttp.RequestCtx) {
	if _, ok := h.accountID(ctx); !ok {
		return
	}
	body, ok := h.decodeRecord(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	results, err := h.svc.Search(stdCtx, adapter.FilterFromRecord(body.Unwrap("filters")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, backend.ResultsWire(backend.ShapeLaravel, results))
}

// @Summary Get one person
// @Tags people
// @Router /api/people/{id} [get]
func (h *PeopleHandler) Person(ctx *fasthttp.RequestCtx) {
	if _, ok := h.accountID(ctx); !ok {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	person, err := h.svc.Person(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, backend.PersonWire(backend.ShapeLaravel, *person))
}
