package ledger

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/domain"
)

const testSchema = `
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

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func mustTrade(t *testing.T, in TradeInput, ownerID int64) *domain.Trade {
	t.Helper()
	trade, err := NewTrade(in, "USD", ownerID)
	require.NoError(t, err)
	return trade
}

func TestInsertAndList(t *testing.T) {
	repo := NewTradeRepository(setupTestDB(t), zerolog.Nop())

	trade := mustTrade(t, TradeInput{
		Date: "2026-01-15", Ticker: "aapl", Side: "buy", Quantity: 10, UnitPrice: 100,
	}, 1)
	require.NoError(t, repo.Insert(trade))

	trades, err := repo.ListByOwner(1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "AAPL", trades[0].Ticker)
	assert.Equal(t, "USD", trades[0].Currency) // default applied at ingestion
	assert.Equal(t, domain.SideBuy, trades[0].Side)
}

func TestListOrdersByDate(t *testing.T) {
	repo := NewTradeRepository(setupTestDB(t), zerolog.Nop())

	later := mustTrade(t, TradeInput{Date: "2026-02-01", Ticker: "AAPL", Side: "buy", Quantity: 1, UnitPrice: 2}, 1)
	earlier := mustTrade(t, TradeInput{Date: "2026-01-01", Ticker: "AAPL", Side: "buy", Quantity: 1, UnitPrice: 1}, 1)
	require.NoError(t, repo.Insert(later))
	require.NoError(t, repo.Insert(earlier))

	trades, err := repo.ListByOwner(1)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "2026-01-01", trades[0].Date)
	assert.Equal(t, "2026-02-01", trades[1].Date)
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := NewTradeRepository(setupTestDB(t), zerolog.Nop())

	trade := mustTrade(t, TradeInput{Date: "2026-01-15", Ticker: "AAPL", Side: "buy", Quantity: 10, UnitPrice: 100}, 1)
	require.NoError(t, repo.Insert(trade))

	// Another owner's delete looks like absence
	err := repo.Delete(trade.ID, 2)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	trades, err := repo.ListByOwner(1)
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	require.NoError(t, repo.Delete(trade.ID, 1))

	err = repo.Delete(trade.ID, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListIsolatesOwners(t *testing.T) {
	repo := NewTradeRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Insert(mustTrade(t, TradeInput{Date: "2026-01-01", Ticker: "AAPL", Side: "buy", Quantity: 1, UnitPrice: 1}, 1)))
	require.NoError(t, repo.Insert(mustTrade(t, TradeInput{Date: "2026-01-01", Ticker: "MSFT", Side: "buy", Quantity: 1, UnitPrice: 1}, 2)))

	trades, err := repo.ListByOwner(1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "AAPL", trades[0].Ticker)

	count, err := repo.CountByOwner(2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNewTradeValidation(t *testing.T) {
	valid := TradeInput{Date: "2026-01-15", Ticker: "AAPL", Side: "buy", Quantity: 10, UnitPrice: 100}

	tests := []struct {
		name   string
		mutate func(*TradeInput)
	}{
		{"empty ticker", func(in *TradeInput) { in.Ticker = " " }},
		{"bad side", func(in *TradeInput) { in.Side = "hold" }},
		{"zero quantity", func(in *TradeInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *TradeInput) { in.Quantity = -1 }},
		{"zero price", func(in *TradeInput) { in.UnitPrice = 0 }},
		{"bad date", func(in *TradeInput) { in.Date = "15/01/2026" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := NewTrade(in, "USD", 1)
			assert.True(t, errors.Is(err, domain.ErrInvalid))
		})
	}

	trade, err := NewTrade(valid, "USD", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, trade.ID)
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeTicker(" aapl "))
	assert.Equal(t, "BTC-USD", NormalizeTicker("btc"))
	assert.Equal(t, "ETH-USD", NormalizeTicker("ETH"))
	assert.Equal(t, "BTC-USD", NormalizeTicker("BTC-USD"))
}
