package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/api/transport"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
)

type AuthHandler struct {
	baseHandler
	svc *backend.Service
}

func NewAuthHandler(svc *backend.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	grant, err := h.svc.Login(stdCtx, req.Credentials())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, grantWire(grant))
}

// @Summary Register an account
// @Description The profile may be provisioned after the reply; the user then carries "profile": null.
// @Tags auth
// @Router /api/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := req.Validate(); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	grant, err := h.svc.Register(stdCtx, req.Registration())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, grantWire(grant))
}

// @Summary Revoke the current session
// @Tags auth
// @Router /api/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.Logout(stdCtx, httpcontext.Token(ctx)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func grantWire(g *backend.Grant) map[string]interface{} {
	return map[string]interface{}{
		"token":      g.Token,
		"token_type": "Bearer",
		"expires_at": g.Session.ExpiresAt.UTC(),
		"user":       backend.UserWire(backend.ShapeLaravel, g.Account, g.Profile),
	}
}
