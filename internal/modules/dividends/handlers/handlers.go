// Package handlers provides HTTP handlers for dividend projections.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/modules/dividends"
)

// Handler handles dividend HTTP requests.
type Handler struct {
	service *dividends.Service
	log     zerolog.Logger
}

// NewHandler creates a new dividends handler.
func NewHandler(service *dividends.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dividends").Logger(),
	}
}

// HandleGetProjection returns the estimated annual dividend income.
func (h *Handler) HandleGetProjection(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	projection, err := h.service.Project(r.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to build dividend projection")
		h.writeError(w, http.StatusServiceUnavailable, "dividend projection unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, projection)
}

// RegisterRoutes registers all dividend routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dividends", func(r chi.Router) {
		r.Get("/projection", h.HandleGetProjection)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
