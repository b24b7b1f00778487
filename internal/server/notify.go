package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/backline/backline/internal/notify"
	"github.com/backline/backline/internal/shared"
	"github.com/charmbracelet/log"
)

// EventDispatcher validates and sends one notification event.
// Implemented by notify.Dispatcher.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *notify.Event) (string, error)
}

// NotifyHandler accepts event payloads and hands them to the dispatcher.
type NotifyHandler struct {
	dispatcher EventDispatcher
	logger     *log.Logger
}

// NewNotifyHandler wires the notification endpoint over the given dispatcher.
func NewNotifyHandler(dispatcher EventDispatcher, logger *log.Logger) *NotifyHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &NotifyHandler{dispatcher: dispatcher, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *NotifyHandler) Routes() []string {
	return []string{"/notify"}
}

// ServeHTTP handles one notification request.
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event notify.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.dispatcher.Dispatch(r.Context(), &event)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("notification dispatch failed", "event", event.Kind, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeSuccess(w, map[string]any{"emailId": id})
}
