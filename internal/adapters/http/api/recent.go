// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/seccard/internal/domain/model"
)

// RecentDependencies defines the interface for recent-history reads.
type RecentDependencies interface {
	RecentM(ctx context.Context, m int) ([]model.SessionRecord, error)
}

// RecentHandler handles recent-history requests.
type RecentHandler struct {
	deps     RecentDependencies
	maxLimit int
}

// NewRecentHandler creates a new recent-history handler.
func NewRecentHandler(deps RecentDependencies, maxLimit int) *RecentHandler {
	return &RecentHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetRecent handles GET /recent?limit=N requests.
func (h *RecentHandler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recent"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	m, err := parseLimit(r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := h.deps.RecentM(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
