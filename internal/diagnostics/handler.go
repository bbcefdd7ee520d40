package diagnostics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
)

type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/healthz/store", h.store)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())
	status := http.StatusOK
	if !report.OK {
		status = http.StatusServiceUnavailable
	}
	httpx.JSON(w, status, report)
}
