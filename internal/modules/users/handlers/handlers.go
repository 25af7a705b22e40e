// Package handlers provides the read-only admin HTTP surface.
// Authorization is the front's job; these handlers only verify the caller's
// admin flag on the user record.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/jlmoreno/cartera/internal/modules/users"
)

// Handler handles admin HTTP requests.
type Handler struct {
	repo  *users.Repository
	stats *users.StatsService
	log   zerolog.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(repo *users.Repository, stats *users.StatsService, log zerolog.Logger) *Handler {
	return &Handler{
		repo:  repo,
		stats: stats,
		log:   log.With().Str("handler", "admin").Logger(),
	}
}

// HandleListUsers returns all registered users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userList, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		h.writeError(w, http.StatusServiceUnavailable, "user store unavailable")
		return
	}

	if userList == nil {
		userList = []domain.User{}
	}
	h.writeJSON(w, http.StatusOK, userList)
}

// HandleGetStats returns the instance-wide record census.
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	stats, err := h.stats.Collect()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to collect admin stats")
		h.writeError(w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// requireAdmin checks the caller's admin flag. Non-admins get 403 whether or
// not the resource exists.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	ownerID, _ := auth.OwnerID(r.Context())

	user, err := h.repo.GetByID(ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusForbidden, "admin access required")
			return false
		}
		h.log.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to load user for admin check")
		h.writeError(w, http.StatusServiceUnavailable, "user store unavailable")
		return false
	}

	if !user.IsAdmin {
		h.writeError(w, http.StatusForbidden, "admin access required")
		return false
	}

	return true
}

// RegisterRoutes registers all admin routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", h.HandleListUsers)
		r.Get("/stats", h.HandleGetStats)
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
