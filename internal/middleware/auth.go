package middleware

import (
	"context"
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/api/transport"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
	appLogger "github.com/fastygo/peoplesearch/pkg/logger"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// BearerAuth rejects requests without a live session and records the caller for handlers.
func BearerAuth(auth Authenticator, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := httpcontext.BearerToken(ctx)
			if token == "" {
				unauthorized(ctx, "Unauthenticated.")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			session, err := auth.Authenticate(stdCtx, token)
			cancel()
			if err == nil {
				var accountID int64
				accountID, err = backend.AccountID(session)
				if err == nil {
					httpcontext.SetSession(ctx, accountID, token)
					next(ctx)
					return
				}
			}

			if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
				appLogger.WithRequestID(stdCtx, logger).Error("session lookup failed", zap.Error(err))
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				body, _ := json.Marshal(transport.NewMessage(string(domain.ErrCodeUnavailable), "session store unavailable"))
				ctx.SetBody(body)
				return
			}
			logger.Debug("rejected bearer token", zap.Error(err))
			unauthorized(ctx, "Unauthenticated.")
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.Header.Set(fasthttp.HeaderWWWAuthenticate, "Bearer")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewMessage(string(domain.ErrCodeUnauthorized), message))
	ctx.SetBody(body)
}
