package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/api/transport"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
	appLogger "github.com/fastygo/peoplesearch/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// accountID returns the caller recorded by the auth middleware, answering 401 when absent.
func (h baseHandler) accountID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := httpcontext.AccountID(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewMessage(string(domain.ErrCodeUnauthorized), "Unauthenticated."))
	}
	return id, ok
}

// decode unmarshals the body into dst, answering 400 on malformed JSON.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewMessage(string(domain.ErrCodeInvalid), "invalid payload"))
		return false
	}
	return true
}

// decodeRecord reads a body whose keys may follow either naming convention.
func (h baseHandler) decodeRecord(ctx *fasthttp.RequestCtx) (adapter.Record, bool) {
	body := ctx.PostBody()
	if len(body) == 0 {
		return adapter.Record{}, true
	}
	rec, err := adapter.DecodeRecord(body)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewMessage(string(domain.ErrCodeInvalid), "invalid payload"))
		return nil, false
	}
	return rec, true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, items []interface{}) {
	h.respondJSON(ctx, http.StatusOK, transport.NewList(items))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	body := transport.ErrorBody{
		Message: domain.MessageOf(err, "internal error"),
		Errors:  domain.FieldsOf(err),
	}
	if status == http.StatusInternalServerError {
		body.Message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, body, nil))
}

func mapError(err error) (int, string) {
	switch code := domain.CodeOf(err); code {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, string(code)
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, string(code)
	case domain.ErrCodeInvalid:
		if len(domain.FieldsOf(err)) > 0 {
			return http.StatusUnprocessableEntity, string(code)
		}
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeConflict:
		return http.StatusConflict, string(code)
	case domain.ErrCodePending:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, string(code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
