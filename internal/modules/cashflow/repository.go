package cashflow

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// EntryRepository handles cash-flow entry persistence in ledger.db.
type EntryRepository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewEntryRepository creates a new cash-flow entry repository.
func NewEntryRepository(ledgerDB *sql.DB, log zerolog.Logger) *EntryRepository {
	return &EntryRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "cash_flows").Logger(),
	}
}

// Insert persists a validated entry.
func (r *EntryRepository) Insert(entry *domain.CashFlowEntry) error {
	_, err := r.ledgerDB.Exec(`
		INSERT INTO cash_flows (id, date, direction, category, amount, currency, description, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Date, entry.Direction, entry.Category,
		entry.Amount, entry.Currency, entry.Description,
		entry.OwnerID, entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cash flow entry: %w", err)
	}

	r.log.Debug().
		Str("id", entry.ID).
		Str("direction", entry.Direction).
		Str("category", entry.Category).
		Float64("amount", entry.Amount).
		Msg("Inserted cash flow entry")

	return nil
}

// Delete removes an entry by id, scoped to the owner. Absence and foreign
// ownership both report domain.ErrNotFound.
func (r *EntryRepository) Delete(id string, ownerID int64) error {
	result, err := r.ledgerDB.Exec(
		"DELETE FROM cash_flows WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete cash flow entry %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cash flow entry %s: %w", id, domain.ErrNotFound)
	}

	r.log.Debug().Str("id", id).Msg("Deleted cash flow entry")
	return nil
}

// ListByOwner returns all of an owner's entries, oldest first.
func (r *EntryRepository) ListByOwner(ownerID int64) ([]domain.CashFlowEntry, error) {
	rows, err := r.ledgerDB.Query(`
		SELECT id, date, direction, category, amount, currency, description, owner_id, created_at
		FROM cash_flows WHERE owner_id = ? ORDER BY date, created_at`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flow entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CashFlowEntry
	for rows.Next() {
		var e domain.CashFlowEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Date, &e.Direction, &e.Category,
			&e.Amount, &e.Currency, &e.Description, &e.OwnerID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cash flow entry: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash flow entries: %w", err)
	}

	return entries, nil
}

// CountByOwner returns the number of entries an owner has recorded.
func (r *EntryRepository) CountByOwner(ownerID int64) (int64, error) {
	var count int64
	err := r.ledgerDB.QueryRow(
		"SELECT COUNT(*) FROM cash_flows WHERE owner_id = ?", ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cash flow entries: %w", err)
	}
	return count, nil
}
