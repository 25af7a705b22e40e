// Package watchlist tracks assets the user follows without necessarily
// holding, enriched with market metadata on read.
package watchlist

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/jlmoreno/cartera/internal/modules/ledger"
)

// Repository handles watchlist persistence in ledger.db.
type Repository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new watchlist repository.
func NewRepository(ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "watchlist").Logger(),
	}
}

// Add inserts a ticker into the owner's watchlist. A ticker already present
// for the owner reports domain.ErrDuplicate.
func (r *Repository) Add(ticker string, targetPrice float64, notes string, ownerID int64) (*domain.WatchlistItem, error) {
	ticker = ledger.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", domain.ErrInvalid)
	}
	if targetPrice < 0 {
		return nil, fmt.Errorf("%w: target price cannot be negative", domain.ErrInvalid)
	}

	item := &domain.WatchlistItem{
		ID:          uuid.NewString(),
		Ticker:      ticker,
		TargetPrice: targetPrice,
		Notes:       strings.TrimSpace(notes),
		OwnerID:     ownerID,
	}

	_, err := r.ledgerDB.Exec(
		"INSERT INTO watchlist (id, ticker, target_price, notes, owner_id) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.Ticker, item.TargetPrice, item.Notes, item.OwnerID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("watchlist ticker %s: %w", ticker, domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to add watchlist item: %w", err)
	}

	r.log.Debug().Str("ticker", ticker).Msg("Added watchlist item")
	return item, nil
}

// Delete removes an item by id, scoped to the owner.
func (r *Repository) Delete(id string, ownerID int64) error {
	result, err := r.ledgerDB.Exec(
		"DELETE FROM watchlist WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("watchlist item %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner returns the owner's watchlist, alphabetical by ticker.
func (r *Repository) ListByOwner(ownerID int64) ([]domain.WatchlistItem, error) {
	rows, err := r.ledgerDB.Query(
		"SELECT id, ticker, target_price, notes, owner_id FROM watchlist WHERE owner_id = ? ORDER BY ticker",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var items []domain.WatchlistItem
	for rows.Next() {
		var item domain.WatchlistItem
		if err := rows.Scan(&item.ID, &item.Ticker, &item.TargetPrice, &item.Notes, &item.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}

	return items, nil
}

// CountByOwner returns the number of items the owner follows.
func (r *Repository) CountByOwner(ownerID int64) (int64, error) {
	var count int64
	err := r.ledgerDB.QueryRow(
		"SELECT COUNT(*) FROM watchlist WHERE owner_id = ?", ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count watchlist items: %w", err)
	}
	return count, nil
}
