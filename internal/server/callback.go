package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/services"
	"github.com/backline/backline/internal/shared"
	"github.com/charmbracelet/log"
)

// defaultExpirySeconds applies when the token response omits expires_in.
const defaultExpirySeconds = 3600

// ConnectionWriter persists connections created by the callback flow.
// Implemented by repositories.ConnectionRepository.
type ConnectionWriter interface {
	Upsert(conn *models.PlatformConnection) error
}

// callbackParams carries the authorization-code flow parameters regardless
// of whether they arrived in the query string or a JSON body.
type callbackParams struct {
	Code  string `json:"code"`
	State string `json:"state"`
	Error string `json:"error"`
}

// CallbackHandler completes the OAuth authorization-code flow for one
// streaming platform. It accepts the platform redirect (GET, query params)
// and the frontend relay (POST, JSON body).
type CallbackHandler struct {
	platforms   *services.Registry
	connections ConnectionWriter
	logger      *log.Logger
	now         func() time.Time
}

// NewCallbackHandler wires the callback endpoint over the platform registry
// and connection store.
func NewCallbackHandler(platforms *services.Registry, connections ConnectionWriter, logger *log.Logger) *CallbackHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CallbackHandler{
		platforms:   platforms,
		connections: connections,
		logger:      logger,
		now:         time.Now,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback/{platform}"}
}

// ServeHTTP handles one OAuth callback request.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	platform, err := models.ParsePlatform(r.PathValue("platform"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := parseCallbackParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Error != "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("platform reported: %s", params.Error))
		return
	}
	if params.Code == "" || params.State == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	adapter, err := h.platforms.Get(platform)
	if err != nil {
		if errors.Is(err, shared.ErrUnsupportedPlatform) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("platform not configured", "platform", platform, "error", err)
		writeError(w, http.StatusInternalServerError, "platform not configured")
		return
	}

	token, err := adapter.Exchange(r.Context(), params.Code)
	if err != nil {
		h.logger.Error("token exchange failed", "platform", platform, "error", err)
		msg := "token exchange failed"
		if diag := services.UpstreamDiagnostic(err); diag != "" {
			msg = fmt.Sprintf("token exchange failed: %s", diag)
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// The state parameter carries the initiating user's identifier.
	userID := params.State

	// Identity lookup is best-effort; a connection without a platform-side
	// identifier is still usable.
	platformUserID, err := adapter.Identity(r.Context(), token.AccessToken)
	if err != nil {
		h.logger.Warn("identity lookup failed", "platform", platform, "error", err)
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = h.now().Add(defaultExpirySeconds * time.Second)
	}

	conn := &models.PlatformConnection{
		UserID:         userID,
		Platform:       platform,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		ExpiresAt:      expiresAt,
		PlatformUserID: platformUserID,
		Active:         true,
	}

	if err := h.connections.Upsert(conn); err != nil {
		h.logger.Error("failed to persist connection", "platform", platform, "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save connection")
		return
	}

	h.logger.Info("platform connected", "platform", platform, "user", userID)
	writeSuccess(w, map[string]any{"message": fmt.Sprintf("%s connected", platform)})
}

// parseCallbackParams reads code/state/error from the query string (GET)
// or a JSON body (POST).
func parseCallbackParams(r *http.Request) (callbackParams, error) {
	if r.Method == http.MethodGet {
		query := r.URL.Query()
		return callbackParams{
			Code:  query.Get("code"),
			State: query.Get("state"),
			Error: query.Get("error"),
		}, nil
	}

	var params callbackParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		return callbackParams{}, err
	}
	return params, nil
}
