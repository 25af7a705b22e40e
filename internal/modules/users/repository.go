// Package users manages owner records. Credentials and sessions live in the
// authenticating front; this side only needs identity and the admin flag.
package users

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
)

// Repository handles user record persistence in ledger.db.
type Repository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new user repository.
func NewRepository(ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "users").Logger(),
	}
}

// Create registers an owner record. Duplicate usernames report
// domain.ErrDuplicate.
func (r *Repository) Create(username string, isAdmin bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalid)
	}

	result, err := r.ledgerDB.Exec(
		"INSERT INTO users (username, is_admin, created_at) VALUES (?, ?, ?)",
		username, isAdmin, time.Now().Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("username %s: %w", username, domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	r.log.Info().Str("username", username).Int64("id", id).Msg("Created user")
	return &domain.User{ID: id, Username: username, IsAdmin: isAdmin}, nil
}

// GetByID returns one user or domain.ErrNotFound.
func (r *Repository) GetByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.ledgerDB.QueryRow(
		"SELECT id, username, is_admin FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Username, &u.IsAdmin)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// List returns all users ordered by id.
func (r *Repository) List() ([]domain.User, error) {
	rows, err := r.ledgerDB.Query("SELECT id, username, is_admin FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
