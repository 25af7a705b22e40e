package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the portfolio valuation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio)
		r.Get("/positions", h.HandleGetPositions)
	})
}
