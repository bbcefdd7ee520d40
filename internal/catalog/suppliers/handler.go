package suppliers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  httpx.DegradedRecorder
}

func NewHandler(logger *slog.Logger, service *Service, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.List)
	r.Post("/suppliers", h.Create)
}

type createSupplierRequest struct {
	Name    string  `json:"name" validate:"max=200"`
	Contact *string `json:"contact" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListActive(r.Context())
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "suppliers", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.Add(r.Context(), AddSupplierInput(req))
	if err != nil {
		h.logger.Error("add supplier failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, s)
}
