package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/peoplesearch/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyAccountID  Key = "account_id"
)

// Request user values set by the authentication middleware.
const (
	userValueAccountID = "peoplesearch.account_id"
	userValueToken     = "peoplesearch.token"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
// The request ID is reused across calls for the same request.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if id, ok := AccountID(ctx); ok {
		stdCtx = context.WithValue(stdCtx, KeyAccountID, id)
	}

	return stdCtx, cancel
}

// SetSession records the authenticated caller on the request.
func SetSession(ctx *fasthttp.RequestCtx, accountID int64, token string) {
	ctx.SetUserValue(userValueAccountID, accountID)
	ctx.SetUserValue(userValueToken, token)
}

// AccountID returns the authenticated account of the request.
func AccountID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(userValueAccountID).(int64)
	return id, ok
}

// Token returns the bearer token the request was authenticated with.
func Token(ctx *fasthttp.RequestCtx) string {
	token, _ := ctx.UserValue(userValueToken).(string)
	return token
}

// BearerToken extracts the credential from the Authorization header.
func BearerToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	if existing := string(ctx.Response.Header.Peek("X-Request-ID")); existing != "" {
		return existing
	}
	return uuid.NewString()
}
