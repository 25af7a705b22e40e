// Package handlers provides HTTP handlers for the valued portfolio view.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/jlmoreno/cartera/internal/modules/portfolio"
	"github.com/jlmoreno/cartera/internal/modules/valuation"
)

// Handler handles portfolio valuation HTTP requests.
type Handler struct {
	service   *valuation.Service
	positions *portfolio.Service
	log       zerolog.Logger
}

// NewHandler creates a new valuation handler.
func NewHandler(service *valuation.Service, positions *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		positions: positions,
		log:       log.With().Str("handler", "valuation").Logger(),
	}
}

// HandleGetPortfolio returns valued positions plus the summary. A degraded
// pass (price source down) still returns 200 with summary.degraded set.
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	result, err := h.service.Portfolio(r.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Valuation pass failed")
		h.writeError(w, http.StatusServiceUnavailable, "portfolio valuation unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleGetPositions returns the raw derived positions, closed ones included,
// without market data.
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	positions, err := h.positions.Positions(ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to compute positions")
		h.writeError(w, http.StatusServiceUnavailable, "trade ledger unavailable")
		return
	}

	if positions == nil {
		positions = []domain.Position{}
	}
	h.writeJSON(w, http.StatusOK, positions)
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
