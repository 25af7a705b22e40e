package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all cash-flow routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cashflow", func(r chi.Router) {
		r.Get("/entries", h.HandleListEntries)
		r.Post("/entries", h.HandleCreateEntry)
		r.Delete("/entries/{id}", h.HandleDeleteEntry)

		r.Get("/summary", h.HandleGetSummary)
		r.Get("/monthly", h.HandleGetMonthly)
		r.Get("/current-month", h.HandleGetCurrentMonth)

		r.Get("/categories", h.HandleListCategories)
		r.Post("/categories", h.HandleCreateCategory)
		r.Delete("/categories/{id}", h.HandleDeleteCategory)
	})
}
