// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/seccard/internal/adapters/repository"
)

// StatsDependencies defines the interface for history aggregates.
type StatsDependencies interface {
	Stats(ctx context.Context) (repository.Stats, error)
}

// StatsHandler handles history aggregate requests.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleGetStats handles GET /stats requests. An empty history yields a
// zero-value aggregate rather than an error.
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, err := h.deps.Stats(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrEmptyLog) {
			writeJSON(w, http.StatusOK, repository.Stats{})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
