package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/shared"
	"github.com/charmbracelet/log"
)

// SyncRunner runs one analytics sync. Implemented by tasks.SyncEngine.
type SyncRunner interface {
	Sync(ctx context.Context, userID string, platform models.PlatformKind) (*models.AnalyticsSnapshot, error)
}

type syncRequest struct {
	UserID   string `json:"user_id"`
	Platform string `json:"platform"`
}

// SyncHandler triggers analytics syncs. The per-platform route takes the
// platform from the path; the generic route takes it from the body.
type SyncHandler struct {
	engine SyncRunner
	logger *log.Logger
}

// NewSyncHandler wires the sync endpoints over the given engine.
func NewSyncHandler(engine SyncRunner, logger *log.Logger) *SyncHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncHandler{engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SyncHandler) Routes() []string {
	return []string{"/sync", "/sync/{platform}"}
}

// ServeHTTP handles one sync request.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id")
		return
	}

	name := r.PathValue("platform")
	if name == "" {
		name = req.Platform
	}
	platform, err := models.ParsePlatform(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.engine.Sync(r.Context(), req.UserID, platform)
	if err != nil {
		h.writeSyncError(w, platform, err)
		return
	}

	writeSuccess(w, map[string]any{
		"data":      snapshot,
		"synced_at": snapshot.SyncedAt,
	})
}

// writeSyncError maps engine failures onto the endpoint's error taxonomy.
func (h *SyncHandler) writeSyncError(w http.ResponseWriter, platform models.PlatformKind, err error) {
	switch {
	case errors.Is(err, shared.ErrNotConnected):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("connect your %s account first", platform))
	case errors.Is(err, shared.ErrReconnectRequired):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("your %s connection has expired, please reconnect", platform))
	case errors.Is(err, shared.ErrUnsupportedPlatform):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrAPIRequest):
		h.logger.Error("sync upstream failure", "platform", platform, "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to fetch %s data", platform))
	default:
		h.logger.Error("sync failed", "platform", platform, "error", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
	}
}
