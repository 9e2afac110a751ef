package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/qnetdash/quorum-dashboard-be/internal/http/respond"
)

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and store reachability.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
}

// NewHealthHandler creates a health endpoint handler. store may be nil when
// the backing store has no connectivity check.
func NewHealthHandler(startedAt time.Time, store Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["store"] = "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["store"] = "ok"
	}
	respond.JSON(w, http.StatusOK, status)
}
