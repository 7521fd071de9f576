package server

import (
	"context"
	"net/http"
	"time"
)

// readyFunc reports per-dependency readiness.
type readyFunc func(ctx context.Context) (map[string]string, bool)

// dependency adapts a single ping into a readyFunc.
func dependency(name string, ping func(ctx context.Context) error) readyFunc {
	return func(ctx context.Context) (map[string]string, bool) {
		if err := ping(ctx); err != nil {
			return map[string]string{name: err.Error()}, false
		}
		return map[string]string{name: "ok"}, true
	}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// registerHealth adds the live and ready probes. Both are unauthenticated.
func (b *base) registerHealth(mux *http.ServeMux, ready readyFunc) {
	mux.HandleFunc("GET /v1/health/live", func(w http.ResponseWriter, _ *http.Request) {
		now := time.Now().UTC()
		writeJSON(w, http.StatusOK, healthResponse{Status: "live", Service: b.service, Timestamp: &now})
	})
	mux.HandleFunc("GET /v1/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks, ok := ready(r.Context())
		if !ok {
			b.logger.Warn("readiness check failed", "checks", checks)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready", Service: b.service, Checks: checks})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ready", Service: b.service, Checks: checks})
	})
}
