package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers the ledger routes under the API router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.listSales)
		r.Post("/", h.createSale)
		r.Get("/recent", h.recentSales)
		r.Patch("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.voidSale)
		r.Post("/{id}/details", h.retryDetails)
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.listExpenses)
		r.Post("/", h.addExpense)
	})
	r.Get("/balance", h.balance)
}
