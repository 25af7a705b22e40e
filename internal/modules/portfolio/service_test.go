package portfolio

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/modules/ledger"
)

const tradesSchema = `
CREATE TABLE trades (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	ticker     TEXT NOT NULL,
	side       TEXT NOT NULL CHECK (side IN ('buy', 'sell')),
	quantity   REAL NOT NULL CHECK (quantity > 0),
	unit_price REAL NOT NULL CHECK (unit_price > 0),
	currency   TEXT NOT NULL,
	owner_id   INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
`

func setupService(t *testing.T) (*Service, *ledger.TradeRepository) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(tradesSchema)
	require.NoError(t, err)

	repo := ledger.NewTradeRepository(db, zerolog.Nop())
	return NewService(repo, NewEngine(zerolog.Nop()), zerolog.Nop()), repo
}

func addTrade(t *testing.T, repo *ledger.TradeRepository, in ledger.TradeInput, ownerID int64) string {
	t.Helper()
	trade, err := ledger.NewTrade(in, "USD", ownerID)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(trade))
	return trade.ID
}

// Adding and then deleting a trade must leave the derived position exactly
// where it started, since positions are recomputed from history every pass.
func TestAddThenDeleteRestoresPosition(t *testing.T) {
	svc, repo := setupService(t)

	addTrade(t, repo, ledger.TradeInput{Date: "2026-01-01", Ticker: "AAPL", Side: "buy", Quantity: 10, UnitPrice: 100}, 1)

	before, err := svc.Positions(1)
	require.NoError(t, err)
	require.Len(t, before, 1)

	id := addTrade(t, repo, ledger.TradeInput{Date: "2026-02-01", Ticker: "AAPL", Side: "sell", Quantity: 4, UnitPrice: 150}, 1)

	mid, err := svc.Positions(1)
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.InDelta(t, 6, mid[0].Quantity, 1e-9)

	require.NoError(t, repo.Delete(id, 1))

	after, err := svc.Positions(1)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.InDelta(t, before[0].Quantity, after[0].Quantity, 1e-9)
	assert.InDelta(t, before[0].AvgCost, after[0].AvgCost, 1e-9)
	assert.InDelta(t, before[0].RealizedGain, after[0].RealizedGain, 1e-9)
}

func TestOpenExcludesSoldOut(t *testing.T) {
	svc, repo := setupService(t)

	addTrade(t, repo, ledger.TradeInput{Date: "2026-01-01", Ticker: "AAPL", Side: "buy", Quantity: 5, UnitPrice: 100}, 1)
	addTrade(t, repo, ledger.TradeInput{Date: "2026-01-02", Ticker: "AAPL", Side: "sell", Quantity: 5, UnitPrice: 120}, 1)
	addTrade(t, repo, ledger.TradeInput{Date: "2026-01-03", Ticker: "MSFT", Side: "buy", Quantity: 2, UnitPrice: 300}, 1)

	open, err := svc.Open(1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "MSFT", open[0].Ticker)
}

func TestPositionsEmptyLedger(t *testing.T) {
	svc, _ := setupService(t)

	positions, err := svc.Positions(1)
	require.NoError(t, err)
	assert.Empty(t, positions)
}
