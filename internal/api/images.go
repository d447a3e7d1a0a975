package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Audit5S/internal/imagegen"
	"github.com/MikeSquared-Agency/Audit5S/internal/metrics"
)

const imageEditFailed = "image edit failed; check the API key and try again"

type ImagesHandler struct {
	client  imagegen.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewImagesHandler(c imagegen.Client, m *metrics.Metrics, logger *slog.Logger) *ImagesHandler {
	return &ImagesHandler{client: c, metrics: m, logger: logger}
}

type ImageEditRequest struct {
	Image  string `json:"image" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
}

type ImageEditResponse struct {
	Image string `json:"image"`
}

// Edit forwards one request to the image model. Every upstream failure is
// reported with the same message.
func (h *ImagesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeError(w, http.StatusServiceUnavailable, "image editing is not configured")
		return
	}
	var req ImageEditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.client.EditImage(r.Context(), req.Image, req.Prompt)
	if err != nil {
		outcome := "error"
		if errors.Is(err, imagegen.ErrNoImage) {
			outcome = "no_image"
		}
		h.metrics.ImageEdits.WithLabelValues(outcome).Inc()
		h.logger.Warn("image edit failed", "error", err)
		writeError(w, http.StatusBadGateway, imageEditFailed)
		return
	}
	h.metrics.ImageEdits.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, ImageEditResponse{Image: out})
}
