package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/api/transport"
	"github.com/fastygo/peoplesearch/internal/infrastructure/monitor"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
)

// Backends names where the server keeps its data, e.g. "postgres" or "memory".
type Backends struct {
	Storage  string `json:"storage"`
	Sessions string `json:"sessions"`
}

type healthReport struct {
	Timestamp time.Time       `json:"timestamp"`
	LastCheck time.Time       `json:"last_check"`
	Services  map[string]bool `json:"services"`
	Backends  Backends        `json:"backends"`
}

type HealthHandler struct {
	baseHandler
	monitor  *monitor.Monitor
	backends Backends
}

func NewHealthHandler(mon *monitor.Monitor, backends Backends, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		backends:    backends,
	}
}

// Check reports the last dependency probe; any failing dependency answers 503.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	report := healthReport{
		Timestamp: time.Now().UTC(),
		LastCheck: status.LastCheck,
		Services:  status.Services,
		Backends:  h.backends,
	}
	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, report)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable,
		transport.NewError("DEGRADED", transport.ErrorBody{Message: "dependencies unhealthy"}, report))
}

// Live answers as long as the process serves requests.
func (h *HealthHandler) Live(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"status": "alive"})
}
