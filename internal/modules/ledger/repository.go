package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// TradeRepository handles trade persistence in ledger.db.
type TradeRepository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewTradeRepository creates a new trade repository.
func NewTradeRepository(ledgerDB *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "trades").Logger(),
	}
}

// Insert persists a validated trade.
func (r *TradeRepository) Insert(trade *domain.Trade) error {
	_, err := r.ledgerDB.Exec(`
		INSERT INTO trades (id, date, ticker, side, quantity, unit_price, currency, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.Date, trade.Ticker, trade.Side,
		trade.Quantity, trade.UnitPrice, trade.Currency,
		trade.OwnerID, trade.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	r.log.Debug().
		Str("id", trade.ID).
		Str("ticker", trade.Ticker).
		Str("side", trade.Side).
		Float64("quantity", trade.Quantity).
		Msg("Inserted trade")

	return nil
}

// Delete removes a trade by id, scoped to the owner. A trade that does not
// exist and a trade owned by someone else both report domain.ErrNotFound.
func (r *TradeRepository) Delete(id string, ownerID int64) error {
	result, err := r.ledgerDB.Exec(
		"DELETE FROM trades WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
	}

	r.log.Debug().Str("id", id).Msg("Deleted trade")
	return nil
}

// ListByOwner returns all trades for an owner, oldest first.
func (r *TradeRepository) ListByOwner(ownerID int64) ([]domain.Trade, error) {
	rows, err := r.ledgerDB.Query(`
		SELECT id, date, ticker, side, quantity, unit_price, currency, owner_id, created_at
		FROM trades WHERE owner_id = ? ORDER BY date, created_at`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ListByOwnerAndTicker returns an owner's trades for one ticker, oldest first.
func (r *TradeRepository) ListByOwnerAndTicker(ownerID int64, ticker string) ([]domain.Trade, error) {
	rows, err := r.ledgerDB.Query(`
		SELECT id, date, ticker, side, quantity, unit_price, currency, owner_id, created_at
		FROM trades WHERE owner_id = ? AND ticker = ? ORDER BY date, created_at`,
		ownerID, ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for %s: %w", ticker, err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// CountByOwner returns the number of trades an owner has recorded.
func (r *TradeRepository) CountByOwner(ownerID int64) (int64, error) {
	var count int64
	err := r.ledgerDB.QueryRow(
		"SELECT COUNT(*) FROM trades WHERE owner_id = ?", ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

func scanTrades(rows *sql.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Date, &t.Ticker, &t.Side,
			&t.Quantity, &t.UnitPrice, &t.Currency, &t.OwnerID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}
