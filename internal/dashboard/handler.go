package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
)

// SummaryService is the surface the handler needs.
type SummaryService interface {
	Summary(ctx context.Context) (Summary, error)
}

type Handler struct {
	logger  *slog.Logger
	service SummaryService
	metrics httpx.DegradedRecorder
}

func NewHandler(logger *slog.Logger, service SummaryService, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.metrics != nil {
		for _, warning := range summary.Warnings {
			h.metrics.DegradedRead("dashboard." + warning.Section)
		}
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Data: summary, Degraded: len(summary.Warnings) > 0})
}
