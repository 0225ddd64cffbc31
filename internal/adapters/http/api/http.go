// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/seccard/internal/adapters/repository"
	service "github.com/okian/seccard/internal/app"
	"github.com/okian/seccard/internal/domain/banding"
	"github.com/okian/seccard/internal/domain/certificate"
	"github.com/okian/seccard/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ScoreSession evaluates one run and returns its payload and token.
	ScoreSession(ctx context.Context, req service.ScoreRequest) (service.ScoreResult, error)

	// Certificate returns the rendered card for a token or session id.
	Certificate(ctx context.Context, token, sessionID string) (certificate.Artifact, error)

	// SetTargetImage stores the raw target photo for thumbnails.
	SetTargetImage(ctx context.Context, data []byte) error

	// Read operations expose the session history.
	TopN(ctx context.Context, n int) ([]model.SessionRecord, error)
	RecentM(ctx context.Context, m int) ([]model.SessionRecord, error)
	Stats(ctx context.Context) (repository.Stats, error)

	// ClearLog irreversibly empties the history.
	ClearLog(ctx context.Context)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statusHandler      *StatusHandler
	sessionsHandler    *SessionsHandler
	leaderboardHandler *LeaderboardHandler
	recentHandler      *RecentHandler
	statsHandler       *StatsHandler
	certificateHandler *CertificateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statusProvider StatusProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statusHandler:      NewStatusHandler(statusProvider),
		sessionsHandler:    NewSessionsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		recentHandler:      NewRecentHandler(deps, maxLimit),
		statsHandler:       NewStatsHandler(deps),
		certificateHandler: NewCertificateHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/recent", MetricsMiddleware(s.recentHandler.HandleGetRecent, "recent"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleGetStats, "stats"))
	mux.HandleFunc("/certificate", MetricsMiddleware(s.certificateHandler.HandleGetCertificate, "certificate"))
	mux.HandleFunc("/target-image", MetricsMiddleware(s.certificateHandler.HandlePostTargetImage, "target_image"))
}

// sessionRequest mirrors the wire schema for POST /sessions.
// distance_yds and moa_per_click are optional per-run overrides of the
// configured sighting setup.
type sessionRequest struct {
	SessionID   string          `json:"session_id,omitempty"`
	Aim         model.Point2D   `json:"aim"`
	Hits        []model.Point2D `json:"hits"`
	TargetKey   string          `json:"target_key,omitempty"`
	VendorURL   string          `json:"vendor_url,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	DistanceYds float64         `json:"distance_yds,omitempty"`
	MOAPerClick float64         `json:"moa_per_click,omitempty"`
}

func (s sessionRequest) validate() error {
	if len(s.Hits) == 0 {
		return errors.New("missing hits")
	}
	if s.DistanceYds < 0 || s.MOAPerClick < 0 {
		return errors.New("negative sighting override")
	}
	if !inUnitSquare(s.Aim) {
		return errors.New("aim outside unit square")
	}
	for _, h := range s.Hits {
		if !inUnitSquare(h) {
			return errors.New("hit outside unit square")
		}
	}
	return nil
}

func inUnitSquare(p model.Point2D) bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// scoreResponse is the wire shape returned by POST /sessions.
type scoreResponse struct {
	Status    string                   `json:"status"`
	Duplicate bool                     `json:"duplicate"`
	Token     string                   `json:"token,omitempty"`
	Payload   *model.SECPayload        `json:"payload,omitempty"`
	Band      *banding.Band            `json:"band,omitempty"`
	Label     string                   `json:"label,omitempty"`
	Daily     *repository.DailyAverage `json:"daily,omitempty"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
