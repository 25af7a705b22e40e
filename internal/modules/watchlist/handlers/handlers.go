// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/jlmoreno/cartera/internal/modules/watchlist"
)

// Handler handles watchlist HTTP requests.
type Handler struct {
	repo    *watchlist.Repository
	service *watchlist.Service
	log     zerolog.Logger
}

// NewHandler creates a new watchlist handler.
func NewHandler(repo *watchlist.Repository, service *watchlist.Service, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "watchlist").Logger(),
	}
}

// HandleList returns the owner's watchlist enriched with market metadata.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	items, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list watchlist")
		h.writeError(w, http.StatusServiceUnavailable, "watchlist unavailable")
		return
	}

	if items == nil {
		items = []watchlist.EnrichedItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// HandleAdd adds a ticker to the owner's watchlist.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	var input struct {
		Ticker      string  `json:"ticker"`
		TargetPrice float64 `json:"target_price"`
		Notes       string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.repo.Add(input.Ticker, input.TargetPrice, input.Notes, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalid):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "ticker already on watchlist")
		default:
			h.log.Error().Err(err).Str("ticker", input.Ticker).Msg("Failed to add watchlist item")
			h.writeError(w, http.StatusServiceUnavailable, "watchlist unavailable")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

// HandleDelete removes a watchlist item owned by the caller.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(id, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "watchlist item not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete watchlist item")
		h.writeError(w, http.StatusServiceUnavailable, "watchlist unavailable")
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
