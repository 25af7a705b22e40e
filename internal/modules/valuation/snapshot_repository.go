package valuation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jlmoreno/cartera/internal/domain"
)

// SnapshotRepository persists the last good valuation pass per owner in
// cache.db. Snapshots are a display fallback for when the price source is
// unreachable; losing them costs nothing but a degraded first page load.
type SnapshotRepository struct {
	cacheDB *sql.DB
	log     zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(cacheDB *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		cacheDB: cacheDB,
		log:     log.With().Str("repo", "valuation_snapshots").Logger(),
	}
}

// Store replaces the owner's snapshot with the given pass.
func (r *SnapshotRepository) Store(ownerID int64, result *Result) error {
	data, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.cacheDB.Exec(`
		INSERT OR REPLACE INTO valuation_snapshots (owner_id, data, created_at)
		VALUES (?, ?, ?)`,
		ownerID, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	r.log.Debug().
		Int64("owner_id", ownerID).
		Int("bytes", len(data)).
		Msg("Stored valuation snapshot")

	return nil
}

// Get returns the owner's last stored pass, or domain.ErrNotFound.
func (r *SnapshotRepository) Get(ownerID int64) (*Result, error) {
	var data []byte
	err := r.cacheDB.QueryRow(
		"SELECT data FROM valuation_snapshots WHERE owner_id = ?", ownerID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot for owner %d: %w", ownerID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var result Result
	if err := msgpack.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &result, nil
}

// Delete removes the owner's snapshot. Idempotent.
func (r *SnapshotRepository) Delete(ownerID int64) error {
	_, err := r.cacheDB.Exec("DELETE FROM valuation_snapshots WHERE owner_id = ?", ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
