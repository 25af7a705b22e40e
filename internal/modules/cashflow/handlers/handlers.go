// Package handlers provides HTTP handlers for the cash-flow ledger.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/jlmoreno/cartera/internal/modules/cashflow"
)

// Handler handles cash-flow HTTP requests.
type Handler struct {
	entries         *cashflow.EntryRepository
	categories      *cashflow.CategoryRepository
	service         *cashflow.Service
	defaultCurrency string
	log             zerolog.Logger
}

// NewHandler creates a new cash-flow handler.
func NewHandler(
	entries *cashflow.EntryRepository,
	categories *cashflow.CategoryRepository,
	service *cashflow.Service,
	defaultCurrency string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		entries:         entries,
		categories:      categories,
		service:         service,
		defaultCurrency: defaultCurrency,
		log:             log.With().Str("handler", "cashflow").Logger(),
	}
}

// HandleListEntries returns all of the owner's entries, oldest first.
func (h *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	entries, err := h.entries.ListByOwner(ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list cash flow entries")
		h.writeError(w, http.StatusServiceUnavailable, "cash flow ledger unavailable")
		return
	}

	if entries == nil {
		entries = []domain.CashFlowEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// HandleCreateEntry records a new income or expense entry.
func (h *Handler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	var input cashflow.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entry, err := cashflow.NewEntry(input, h.defaultCurrency, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.entries.Insert(entry); err != nil {
		h.log.Error().Err(err).Str("category", entry.Category).Msg("Failed to insert cash flow entry")
		h.writeError(w, http.StatusServiceUnavailable, "cash flow ledger unavailable")
		return
	}

	h.writeJSON(w, http.StatusCreated, entry)
}

// HandleDeleteEntry removes an entry owned by the caller.
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.entries.Delete(id, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete cash flow entry")
		h.writeError(w, http.StatusServiceUnavailable, "cash flow ledger unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// HandleGetSummary returns normalized all-time totals.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	summary, err := h.service.Summarize(r.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to build cash flow summary")
		h.writeError(w, http.StatusServiceUnavailable, "cash flow summary unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleGetMonthly returns the month-bucketed series.
func (h *Handler) HandleGetMonthly(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	series, err := h.service.MonthlySeries(r.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to build monthly series")
		h.writeError(w, http.StatusServiceUnavailable, "cash flow series unavailable")
		return
	}

	if series == nil {
		series = []cashflow.MonthBucket{}
	}
	h.writeJSON(w, http.StatusOK, series)
}

// HandleGetCurrentMonth returns the current calendar-month view.
func (h *Handler) HandleGetCurrentMonth(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	view, err := h.service.ThisMonth(r.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to build current month view")
		h.writeError(w, http.StatusServiceUnavailable, "cash flow view unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// HandleListCategories returns the owner's categories, seeding defaults on
// first access.
func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	if err := h.categories.EnsureDefaults(ownerID); err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to seed default categories")
		h.writeError(w, http.StatusServiceUnavailable, "categories unavailable")
		return
	}

	categories, err := h.categories.ListByOwner(ownerID)
	if err != nil {
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list categories")
		h.writeError(w, http.StatusServiceUnavailable, "categories unavailable")
		return
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	h.writeJSON(w, http.StatusOK, categories)
}

// HandleCreateCategory adds a category for the owner.
func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	var input struct {
		Name      string `json:"name"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	category, err := h.categories.Create(input.Name, input.Direction, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalid):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "category already exists")
		default:
			h.log.Error().Err(err).Str("name", input.Name).Msg("Failed to create category")
			h.writeError(w, http.StatusServiceUnavailable, "categories unavailable")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, category)
}

// HandleDeleteCategory removes a category owned by the caller.
func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categories.Delete(id, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete category")
		h.writeError(w, http.StatusServiceUnavailable, "categories unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
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
