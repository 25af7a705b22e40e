// Package handlers provides HTTP handlers for the trade ledger.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/jlmoreno/cartera/internal/modules/ledger"
)

// Handler handles trade ledger HTTP requests.
type Handler struct {
	repo            *ledger.TradeRepository
	defaultCurrency string
	log             zerolog.Logger
}

// NewHandler creates a new ledger handler.
func NewHandler(repo *ledger.TradeRepository, defaultCurrency string, log zerolog.Logger) *Handler {
	return &Handler{
		repo:            repo,
		defaultCurrency: defaultCurrency,
		log:             log.With().Str("handler", "ledger").Logger(),
	}
}

// HandleListTrades returns the owner's full trade history, oldest first.
// An owner with no trades gets an empty array, not an error.
func (h *Handler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	trades, err := h.repo.ListByOwner(ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list trades")
		h.writeError(w, http.StatusServiceUnavailable, "trade ledger unavailable")
		return
	}

	if trades == nil {
		trades = []domain.Trade{}
	}
	h.writeJSON(w, http.StatusOK, trades)
}

// HandleCreateTrade records a new trade.
func (h *Handler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	var input ledger.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	trade, err := ledger.NewTrade(input, h.defaultCurrency, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.repo.Insert(trade); err != nil {
		h.log.Error().Err(err).Str("ticker", trade.Ticker).Msg("Failed to insert trade")
		h.writeError(w, http.StatusServiceUnavailable, "trade ledger unavailable")
		return
	}

	h.writeJSON(w, http.StatusCreated, trade)
}

// HandleDeleteTrade removes a trade owned by the caller.
func (h *Handler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(id, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "trade not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete trade")
		h.writeError(w, http.StatusServiceUnavailable, "trade ledger unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
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
