package valuation

import (
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/domain"
)

func TestSnapshotStoreAndGet(t *testing.T) {
	repo := setupSnapshotDB(t)

	original := &Result{
		Positions: []domain.ValuedPosition{
			{
				Position:     domain.Position{Ticker: "AAPL", Currency: "USD", Quantity: 10, AvgCost: 100},
				CurrentPrice: 150,
				MarketValue:  1500,
				CostBasis:    1000,
				Priced:       true,
			},
		},
		Summary: Summary{TotalMarketValue: 1500, TotalCostBasis: 1000, ExchangeRate: 1000},
		AsOf:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Store(1, original))

	got, err := repo.Get(1)
	require.NoError(t, err)
	require.Len(t, got.Positions, 1)
	assert.Equal(t, "AAPL", got.Positions[0].Ticker)
	assert.InDelta(t, 1500, got.Summary.TotalMarketValue, 1e-9)
	assert.True(t, got.AsOf.Equal(original.AsOf))
}

func TestSnapshotStoreReplaces(t *testing.T) {
	repo := setupSnapshotDB(t)

	require.NoError(t, repo.Store(1, &Result{Summary: Summary{TotalMarketValue: 100}}))
	require.NoError(t, repo.Store(1, &Result{Summary: Summary{TotalMarketValue: 200}}))

	got, err := repo.Get(1)
	require.NoError(t, err)
	assert.InDelta(t, 200, got.Summary.TotalMarketValue, 1e-9)
}

func TestSnapshotGetMissing(t *testing.T) {
	repo := setupSnapshotDB(t)

	_, err := repo.Get(99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSnapshotDeleteIdempotent(t *testing.T) {
	repo := setupSnapshotDB(t)

	require.NoError(t, repo.Store(1, &Result{}))
	require.NoError(t, repo.Delete(1))
	require.NoError(t, repo.Delete(1))

	_, err := repo.Get(1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
