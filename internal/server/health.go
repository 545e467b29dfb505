package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusUnavailable  = "unavailable"
)

// tokenStorePingTimeout bounds the token store check of /readyz.
const tokenStorePingTimeout = 2 * time.Second

// pinger is implemented by token stores backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker serves the Kubernetes probes. It starts ready; the HTTP
// server flips it off while draining.
type HealthChecker struct {
	ready   atomic.Bool
	sc      *ServerContext // nil in tests
	started time.Time
}

func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, started: time.Now()}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) isReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Domain string `json:"domain,omitempty"`
}

// RegisterHealthEndpoints mounts the probe handlers on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// state is the process level status shared by /readyz and /healthz/detailed.
func (h *HealthChecker) state() string {
	switch {
	case !h.isReady():
		return healthStatusNotReady
	case h.sc != nil && h.sc.IsShutdown():
		return healthStatusShuttingDown
	default:
		return healthStatusOK
	}
}

// LivenessHandler answers ok as long as the process serves HTTP.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler reports one check per dependency: the ready flag,
// shutdown, the booking service and a remote token store when configured.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"ready":    healthStatusOK,
			"shutdown": healthStatusOK,
		}
		switch h.state() {
		case healthStatusNotReady:
			checks["ready"] = healthStatusNotReady
		case healthStatusShuttingDown:
			checks["shutdown"] = healthStatusShuttingDown
		}

		if h.sc != nil {
			checks["booking"] = healthStatusOK
			if _, err := h.sc.Service(); err != nil {
				checks["booking"] = healthStatusUnavailable
			}
			if p, ok := h.sc.TokenStore().(pinger); ok {
				checks["token_store"] = h.ping(r.Context(), p)
			}
		}

		resp := HealthResponse{Status: healthStatusOK, Checks: checks}
		code := http.StatusOK
		for _, status := range checks {
			if status != healthStatusOK {
				resp.Status = healthStatusNotReady
				code = http.StatusServiceUnavailable
				break
			}
		}
		writeHealth(w, code, resp)
	})
}

func (h *HealthChecker) ping(ctx context.Context, p pinger) string {
	ctx, cancel := context.WithTimeout(ctx, tokenStorePingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return healthStatusUnavailable
	}
	return healthStatusOK
}

// DetailedHealthHandler adds uptime and the configured domain.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status: h.state(),
			Uptime: time.Since(h.started).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			resp.Domain = h.sc.Domain()
		}

		code := http.StatusOK
		if resp.Status != healthStatusOK {
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
