package valuation

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/domain"
)

type stubPositions struct {
	positions []domain.Position
	err       error
}

func (s *stubPositions) Open(ownerID int64) ([]domain.Position, error) {
	return s.positions, s.err
}

type stubPrices struct {
	prices map[string]float64
	err    error
}

func (s *stubPrices) GetPrices(ctx context.Context, tickers []string) (map[string]float64, error) {
	return s.prices, s.err
}

type stubRates struct {
	rate float64
	err  error
}

func (s *stubRates) GetRate(ctx context.Context, from, to string) (float64, error) {
	return s.rate, s.err
}

type stubContributions struct {
	net float64
}

func (s *stubContributions) NetContributions(ctx context.Context, ownerID int64) (float64, error) {
	return s.net, nil
}

func setupSnapshotDB(t *testing.T) *SnapshotRepository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE valuation_snapshots (
		owner_id   INTEGER PRIMARY KEY,
		data       BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	return NewSnapshotRepository(db, zerolog.Nop())
}

func newTestService(positions []domain.Position, prices *stubPrices, rate float64, snapshots *SnapshotRepository) *Service {
	return NewService(
		&stubPositions{positions: positions},
		prices,
		&stubRates{rate: rate},
		&stubContributions{net: 0},
		snapshots,
		"USD", "ARS",
		zerolog.Nop(),
	)
}

func TestPortfolioIdentity(t *testing.T) {
	positions := []domain.Position{
		{Ticker: "AAPL", Currency: "USD", Quantity: 10, AvgCost: 100, RealizedGain: 50},
		{Ticker: "MSFT", Currency: "USD", Quantity: 2, AvgCost: 300},
	}
	svc := newTestService(positions, &stubPrices{prices: map[string]float64{"AAPL": 150, "MSFT": 250}}, 1000, nil)

	result, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Positions, 2)

	// market value = cost basis + unrealized gain, per position and in total
	for _, p := range result.Positions {
		assert.InDelta(t, p.MarketValue, p.CostBasis+p.UnrealizedGain, 1e-9)
	}
	s := result.Summary
	assert.InDelta(t, s.TotalMarketValue, s.TotalCostBasis+s.TotalUnrealizedGain, 1e-9)
	assert.InDelta(t, 1500+500, s.TotalMarketValue, 1e-9)
	assert.InDelta(t, 50, s.TotalRealizedGain, 1e-9)
	assert.InDelta(t, s.TotalUnrealizedGain+s.TotalRealizedGain, s.TotalGain, 1e-9)
	assert.False(t, s.Degraded)
}

func TestPortfolioNormalizesSecondaryCurrency(t *testing.T) {
	// 10 shares at 50000 ARS with rate 1000 ARS/USD values at 500 USD
	positions := []domain.Position{
		{Ticker: "YPF", Currency: "ARS", Quantity: 10, AvgCost: 40000},
	}
	svc := newTestService(positions, &stubPrices{prices: map[string]float64{"YPF": 50000}}, 1000, nil)

	result, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Positions, 1)

	p := result.Positions[0]
	assert.InDelta(t, 500, p.MarketValue, 1e-9)
	assert.InDelta(t, 400, p.CostBasis, 1e-9)
	assert.InDelta(t, 100, p.UnrealizedGain, 1e-9)
	assert.InDelta(t, 25, p.ReturnPct, 1e-9)
	assert.InDelta(t, 1000, result.Summary.ExchangeRate, 1e-9)
}

func TestPortfolioMissingPriceStaysListed(t *testing.T) {
	positions := []domain.Position{
		{Ticker: "AAPL", Currency: "USD", Quantity: 10, AvgCost: 100},
		{Ticker: "OBSCURE", Currency: "USD", Quantity: 5, AvgCost: 20},
	}
	svc := newTestService(positions, &stubPrices{prices: map[string]float64{"AAPL": 150}}, 1000, nil)

	result, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Positions, 2)

	var unpriced *domain.ValuedPosition
	for i := range result.Positions {
		if result.Positions[i].Ticker == "OBSCURE" {
			unpriced = &result.Positions[i]
		}
	}
	require.NotNil(t, unpriced)
	assert.False(t, unpriced.Priced)
	assert.InDelta(t, 0, unpriced.MarketValue, 1e-9)
}

func TestPortfolioPartialFailureMarksDegraded(t *testing.T) {
	positions := []domain.Position{
		{Ticker: "AAPL", Currency: "USD", Quantity: 10, AvgCost: 100},
	}
	prices := &stubPrices{prices: map[string]float64{"AAPL": 150}, err: errors.New("upstream flaky")}
	svc := newTestService(positions, prices, 1000, nil)

	result, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Summary.Degraded)
	assert.InDelta(t, 1500, result.Summary.TotalMarketValue, 1e-9)
}

func TestPortfolioServesSnapshotWhenSourceDown(t *testing.T) {
	snapshots := setupSnapshotDB(t)
	positions := []domain.Position{
		{Ticker: "AAPL", Currency: "USD", Quantity: 10, AvgCost: 100},
	}

	// First pass succeeds and stores a snapshot
	prices := &stubPrices{prices: map[string]float64{"AAPL": 150}}
	svc := newTestService(positions, prices, 1000, snapshots)
	good, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, good.Summary.Degraded)

	// Second pass: source fully unreachable, the snapshot comes back degraded
	prices.prices = nil
	prices.err = errors.New("connection refused")

	degraded, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, degraded.Summary.Degraded)
	assert.InDelta(t, good.Summary.TotalMarketValue, degraded.Summary.TotalMarketValue, 1e-9)
	require.Len(t, degraded.Positions, 1)
	assert.InDelta(t, 150, degraded.Positions[0].CurrentPrice, 1e-9)
}

func TestPortfolioNoTrades(t *testing.T) {
	svc := newTestService(nil, &stubPrices{}, 1000, nil)

	result, err := svc.Portfolio(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, result.Positions)
	assert.InDelta(t, 0, result.Summary.TotalMarketValue, 1e-9)
	assert.InDelta(t, 0, result.Summary.ReturnPct, 1e-9)
}
