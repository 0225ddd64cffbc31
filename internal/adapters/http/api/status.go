// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// StatusProvider defines the interface for getting service statistics.
type StatusProvider interface {
	GetStats() map[string]interface{}
}

// StatusHandler handles service monitoring requests.
type StatusHandler struct {
	statusProvider StatusProvider
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(statusProvider StatusProvider) *StatusHandler {
	return &StatusHandler{statusProvider: statusProvider}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statusProvider.GetStats()
	_ = json.NewEncoder(w).Encode(stats)
}
