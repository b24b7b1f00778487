package server

import (
	"net/http"
)

// Pinger reports whether the backing store answers. Implemented by *sql.DB.
type Pinger interface {
	Ping() error
}

// HealthHandler reports service and store health.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler wires the health endpoint over the given store.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

// ServeHTTP answers one health check.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := "ok"
	status := http.StatusOK
	if h.store == nil {
		store = "not configured"
	} else if err := h.store.Ping(); err != nil {
		store = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{"status": "ok", "store": store})
}
