// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/seccard/internal/app"
)

// SessionDependencies defines the interface for session scoring.
type SessionDependencies interface {
	ScoreSession(ctx context.Context, req service.ScoreRequest) (service.ScoreResult, error)
	ClearLog(ctx context.Context)
}

// SessionsHandler handles scoring submissions and history resets.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleSessions dispatches POST (score a run) and DELETE (clear history).
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.ScoreSession(r.Context(), service.ScoreRequest{
		SessionID:   req.SessionID,
		Anchor:      req.Aim,
		Hits:        req.Hits,
		TargetKey:   req.TargetKey,
		VendorURL:   req.VendorURL,
		SKU:         req.SKU,
		DistanceYds: req.DistanceYds,
		MOAPerClick: req.MOAPerClick,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", Wrap(op, err))
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, scoreResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusCreated, scoreResponse{
		Status:  "scored",
		Token:   res.Token,
		Payload: &res.Payload,
		Band:    &res.Band,
		Label:   res.Label,
		Daily:   &res.Daily,
	})
}

// handleDelete clears the session history. Destructive, so it requires
// an explicit confirm=true query parameter.
func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_sessions"
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm_required", NewKind(op, ErrBadRequest))
		return
	}
	h.deps.ClearLog(r.Context())
	writeJSON(w, http.StatusOK, ackResponse{Status: "cleared"})
}
