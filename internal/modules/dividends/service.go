package dividends

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
)

// PositionSource is the slice of the portfolio service this module needs.
type PositionSource interface {
	Open(ownerID int64) ([]domain.Position, error)
}

// PositionProjection is the estimated dividend income for one holding.
type PositionProjection struct {
	Ticker       string  `json:"ticker"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	AnnualRate   float64 `json:"annual_rate"`   // per share
	AnnualIncome float64 `json:"annual_income"` // quantity x rate, position currency
	Frequency    string  `json:"frequency"`
	NextExDate   string  `json:"next_ex_date,omitempty"`
	NextPayDate  string  `json:"next_pay_date,omitempty"`
}

// Projection is the portfolio-wide dividend estimate.
type Projection struct {
	Positions         []PositionProjection `json:"positions"`
	TotalAnnualIncome float64              `json:"total_annual_income"`
	SkippedTickers    []string             `json:"skipped_tickers,omitempty"` // dividend data unavailable
}

// Service builds dividend projections from open positions.
type Service struct {
	positions PositionSource
	source    domain.DividendSource
	log       zerolog.Logger
}

// NewService creates a new dividend projection service.
func NewService(positions PositionSource, source domain.DividendSource, log zerolog.Logger) *Service {
	return &Service{
		positions: positions,
		source:    source,
		log:       log.With().Str("service", "dividends").Logger(),
	}
}

// Project estimates annual dividend income per open position. Positions
// whose dividend data cannot be fetched are listed as skipped; positions
// that simply pay no dividend are omitted.
func (s *Service) Project(ctx context.Context, ownerID int64) (*Projection, error) {
	open, err := s.positions.Open(ownerID)
	if err != nil {
		return nil, err
	}

	projection := &Projection{Positions: []PositionProjection{}}

	for _, p := range open {
		info, err := s.source.GetDividendInfo(ctx, p.Ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", p.Ticker).Msg("Dividend info unavailable")
			projection.SkippedTickers = append(projection.SkippedTickers, p.Ticker)
			continue
		}
		if info.AnnualRate <= 0 {
			continue
		}

		income := p.Quantity * info.AnnualRate
		projection.Positions = append(projection.Positions, PositionProjection{
			Ticker:       p.Ticker,
			Currency:     p.Currency,
			Quantity:     p.Quantity,
			AnnualRate:   info.AnnualRate,
			AnnualIncome: income,
			Frequency:    EstimateFrequency(info.PaymentDates),
			NextExDate:   info.NextExDate,
			NextPayDate:  info.NextPayDate,
		})
		projection.TotalAnnualIncome += income
	}

	return projection, nil
}
