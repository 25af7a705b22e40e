package portfolio

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/domain"
)

func buy(ticker string, qty, price float64) domain.Trade {
	return domain.Trade{Ticker: ticker, Currency: "USD", Side: domain.SideBuy, Quantity: qty, UnitPrice: price}
}

func sell(ticker string, qty, price float64) domain.Trade {
	return domain.Trade{Ticker: ticker, Currency: "USD", Side: domain.SideSell, Quantity: qty, UnitPrice: price}
}

func TestComputeBuyOnly(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	positions := engine.Compute([]domain.Trade{
		buy("AAPL", 10, 100),
		buy("AAPL", 10, 200),
	})

	require.Len(t, positions, 1)
	p := positions[0]
	assert.Equal(t, "AAPL", p.Ticker)
	assert.InDelta(t, 20, p.Quantity, 1e-9)
	assert.InDelta(t, 150, p.AvgCost, 1e-9) // (10*100 + 10*200) / 20
	assert.InDelta(t, 0, p.RealizedGain, 1e-9)
}

func TestComputePartialSale(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	// Buy 10 @ 100, sell 4 @ 150
	positions := engine.Compute([]domain.Trade{
		buy("AAPL", 10, 100),
		sell("AAPL", 4, 150),
	})

	require.Len(t, positions, 1)
	p := positions[0]
	assert.InDelta(t, 6, p.Quantity, 1e-9)
	assert.InDelta(t, 100, p.AvgCost, 1e-9)
	assert.InDelta(t, 200, p.RealizedGain, 1e-9) // 4*150 - 4*100
}

func TestComputeSellsDoNotMoveAverageCost(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	// The average covers all buys regardless of the interleaved sell.
	positions := engine.Compute([]domain.Trade{
		buy("AAPL", 10, 100),
		sell("AAPL", 10, 150),
		buy("AAPL", 10, 300),
	})

	require.Len(t, positions, 1)
	assert.InDelta(t, 200, positions[0].AvgCost, 1e-9) // (1000 + 3000) / 20
}

func TestComputeOrderIndependence(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	trades := []domain.Trade{
		buy("AAPL", 10, 100),
		sell("AAPL", 3, 120),
		buy("AAPL", 5, 140),
		sell("AAPL", 2, 160),
		buy("AAPL", 1.5, 90),
	}

	reference := engine.Compute(trades)
	require.Len(t, reference, 1)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]domain.Trade, len(trades))
		copy(shuffled, trades)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := engine.Compute(shuffled)
		require.Len(t, got, 1)
		assert.InDelta(t, reference[0].Quantity, got[0].Quantity, 1e-9)
		assert.InDelta(t, reference[0].AvgCost, got[0].AvgCost, 1e-9)
		assert.InDelta(t, reference[0].RealizedGain, got[0].RealizedGain, 1e-9)
	}
}

func TestComputeFullSaleClosesPosition(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	positions := engine.Compute([]domain.Trade{
		buy("AAPL", 3.333333, 100),
		sell("AAPL", 3.333333, 110),
	})

	require.Len(t, positions, 1)
	assert.LessOrEqual(t, positions[0].Quantity, Epsilon)
	assert.Empty(t, OpenPositions(positions))
}

func TestComputeSellWithoutBuys(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	positions := engine.Compute([]domain.Trade{
		sell("AAPL", 5, 100),
	})

	require.Len(t, positions, 1)
	p := positions[0]
	assert.InDelta(t, 0, p.AvgCost, 1e-9)
	assert.InDelta(t, 500, p.RealizedGain, 1e-9) // full proceeds pass through
	assert.InDelta(t, -5, p.Quantity, 1e-9)
	assert.Empty(t, OpenPositions(positions))
}

func TestComputeGroupsByTickerAndCurrency(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	positions := engine.Compute([]domain.Trade{
		buy("AAPL", 10, 100),
		{Ticker: "AAPL", Currency: "ARS", Side: domain.SideBuy, Quantity: 10, UnitPrice: 50000},
		buy("MSFT", 1, 300),
	})

	assert.Len(t, positions, 3)
}

func TestComputeEmpty(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	assert.Empty(t, engine.Compute(nil))
	assert.Empty(t, OpenPositions(nil))
}
