package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/api/transport"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
)

type ProfileHandler struct {
	baseHandler
	svc *backend.Service
}

func NewProfileHandler(svc *backend.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary Get the current user with profile
// @Tags profile
// @Success 200 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope "profile not provisioned yet"
// @Router /api/user/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, profile, err := h.svc.Profile(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, backend.UserWire(backend.ShapeLaravel, account, profile))
}

// @Summary Update profile fields
// @Tags profile
// @Accept json
// @Produce json
// @Router /api/user/profile [put]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}
	body, ok := h.decodeRecord(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, profile, err := h.svc.UpdateProfile(stdCtx, id, adapter.ProfileChangesFromRecord(body))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, backend.UserWire(backend.ShapeLaravel, account, profile))
}

// @Summary Change the subscription plan
// @Tags profile
// @Router /api/user/subscription [put]
func (h *ProfileHandler) UpdateSubscription(ctx *fasthttp.RequestCtx) {
	id, ok := h.accountID(ctx)
	if !ok {
		return
	}
	var req transport.SubscriptionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, profile, err := h.svc.UpdateSubscription(stdCtx, id, req.Plan)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, backend.UserWire(backend.ShapeLaravel, account, profile))
}

// @Summary List the plan catalog
// @Tags profile
// @Router /api/plans [get]
func (h *ProfileHandler) Plans(ctx *fasthttp.RequestCtx) {
	plans := domain.Plans()
	items := make([]interface{}, 0, len(plans))
	for _, p := range plans {
		items = append(items, p)
	}
	h.respondList(ctx, items)
}
