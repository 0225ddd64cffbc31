// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/okian/seccard/internal/app"
	"github.com/okian/seccard/internal/domain/certificate"
	"github.com/okian/seccard/internal/domain/codec"
)

// maxTargetImageBytes bounds POST /target-image uploads.
const maxTargetImageBytes = 8 << 20

// CertificateDependencies defines the interface for certificate delivery.
type CertificateDependencies interface {
	Certificate(ctx context.Context, token, sessionID string) (certificate.Artifact, error)
	SetTargetImage(ctx context.Context, data []byte) error
}

// CertificateHandler handles certificate downloads and target uploads.
type CertificateHandler struct {
	deps CertificateDependencies
}

// NewCertificateHandler creates a new certificate handler.
func NewCertificateHandler(deps CertificateDependencies) *CertificateHandler {
	return &CertificateHandler{deps: deps}
}

// HandleGetCertificate handles GET /certificate?token=...&session=... requests.
// The response is the composed PNG with a download filename.
func (h *CertificateHandler) HandleGetCertificate(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_certificate"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	token := r.URL.Query().Get("token")
	sessionID := r.URL.Query().Get("session")

	art, err := h.deps.Certificate(r.Context(), token, sessionID)
	if err != nil {
		switch {
		case codec.IsMissing(err):
			writeError(w, http.StatusNotFound, "missing_payload", WrapKind(op, ErrNotFound, err))
		case errors.Is(err, certificate.ErrMissingTargetImage):
			writeError(w, http.StatusUnprocessableEntity, "missing_target_image", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.PNG)
}

// HandlePostTargetImage handles POST /target-image requests. The body is
// the raw image bytes.
func (h *CertificateHandler) HandlePostTargetImage(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_target_image"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxTargetImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(data) == 0 || len(data) > maxTargetImageBytes {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.SetTargetImage(r.Context(), data); err != nil {
		if errors.Is(err, service.ErrBadImage) {
			writeError(w, http.StatusBadRequest, "bad_image", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "stored"})
}
