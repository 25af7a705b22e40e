package dividends

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/domain"
)

type stubPositions struct {
	positions []domain.Position
}

func (s *stubPositions) Open(ownerID int64) ([]domain.Position, error) {
	return s.positions, nil
}

type mockDividendSource struct {
	mock.Mock
}

func (m *mockDividendSource) GetDividendInfo(ctx context.Context, ticker string) (*domain.DividendInfo, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DividendInfo), args.Error(1)
}

func TestProject(t *testing.T) {
	positions := &stubPositions{positions: []domain.Position{
		{Ticker: "KO", Currency: "USD", Quantity: 100},
		{Ticker: "GOOG", Currency: "USD", Quantity: 10},
	}}

	source := new(mockDividendSource)
	source.On("GetDividendInfo", mock.Anything, "KO").Return(&domain.DividendInfo{
		AnnualRate:   2.04,
		PaymentDates: dates("2024-01-15", 91*day, 8),
		NextExDate:   "2026-03-13",
	}, nil)
	source.On("GetDividendInfo", mock.Anything, "GOOG").Return(&domain.DividendInfo{AnnualRate: 0}, nil)

	svc := NewService(positions, source, zerolog.Nop())

	projection, err := svc.Project(context.Background(), 1)
	require.NoError(t, err)

	// Non-payers are omitted, not skipped
	require.Len(t, projection.Positions, 1)
	p := projection.Positions[0]
	assert.Equal(t, "KO", p.Ticker)
	assert.InDelta(t, 204, p.AnnualIncome, 1e-9)
	assert.Equal(t, FrequencyQuarterly, p.Frequency)
	assert.Equal(t, "2026-03-13", p.NextExDate)
	assert.InDelta(t, 204, projection.TotalAnnualIncome, 1e-9)
	assert.Empty(t, projection.SkippedTickers)

	source.AssertExpectations(t)
}

func TestProjectSkipsUnavailableTickers(t *testing.T) {
	positions := &stubPositions{positions: []domain.Position{
		{Ticker: "KO", Currency: "USD", Quantity: 100},
		{Ticker: "FLAKY", Currency: "USD", Quantity: 5},
	}}

	source := new(mockDividendSource)
	source.On("GetDividendInfo", mock.Anything, "KO").Return(&domain.DividendInfo{AnnualRate: 2.0}, nil)
	source.On("GetDividendInfo", mock.Anything, "FLAKY").Return(nil, errors.New("timeout"))

	svc := NewService(positions, source, zerolog.Nop())

	projection, err := svc.Project(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, projection.Positions, 1)
	assert.Equal(t, []string{"FLAKY"}, projection.SkippedTickers)
	assert.InDelta(t, 200, projection.TotalAnnualIncome, 1e-9)
}
