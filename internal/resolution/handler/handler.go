// Package handler wires the resolution endpoints to the coordinator.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"veridoc/internal/resolution"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/httputil"
	"veridoc/pkg/requestcontext"
)

// Coordinator defines the resolution operations the handler needs.
type Coordinator interface {
	Submit(ctx context.Context, streamKey string, image []byte) *resolution.Session
	Get(ctx context.Context, id uuid.UUID) (*resolution.Snapshot, error)
}

// Handler serves the resolution endpoints. Images are read from the local
// document root referenced by the request; the API never accepts document
// bytes.
type Handler struct {
	coordinator  Coordinator
	documentRoot string
	logger       *slog.Logger
}

// New constructs a resolution handler with its dependencies.
func New(coordinator Coordinator, documentRoot string, logger *slog.Logger) *Handler {
	return &Handler{
		coordinator:  coordinator,
		documentRoot: documentRoot,
		logger:       logger,
	}
}

// Register mounts resolution endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/resolutions", h.HandleCreate)
	r.Get("/resolutions/{id}", h.HandleGet)
}

// HandleCreate handles POST /v1/resolutions requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateResolutionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	image, err := h.readImage(req.ImagePath)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read document image",
			"request_id", requestID,
			"image_path", req.ImagePath,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	sess := h.coordinator.Submit(ctx, req.StreamKey, image)

	h.logger.InfoContext(ctx, "resolution submitted",
		"request_id", requestID,
		"session_id", sess.ID(),
		"stream_key", req.StreamKey,
	)

	if !req.Wait {
		snap := sess.Snapshot()
		httputil.WriteJSON(w, http.StatusAccepted, FromSnapshot(&snap))
		return
	}

	if _, err := sess.Wait(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap := sess.Snapshot()
	h.logger.InfoContext(ctx, "resolution completed",
		"request_id", requestID,
		"session_id", sess.ID(),
		"state", snap.State,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(&snap))
}

// HandleGet handles GET /v1/resolutions/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid session id"))
		return
	}

	snap, err := h.coordinator.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(snap))
}

// readImage loads the referenced image from the document root. The request
// validation already rejected non-local paths.
func (h *Handler) readImage(imagePath string) ([]byte, error) {
	full := filepath.Join(h.documentRoot, imagePath)
	image, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document image not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document image")
	}
	return image, nil
}
