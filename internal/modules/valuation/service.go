// Package valuation prices open positions and normalizes them to the
// primary currency for a portfolio-level view.
package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
)

// PositionSource is the slice of the portfolio service this engine needs.
type PositionSource interface {
	Open(ownerID int64) ([]domain.Position, error)
}

// ContributionSource reports net capital moved into the brokerage ledger,
// normalized to the primary currency.
type ContributionSource interface {
	NetContributions(ctx context.Context, ownerID int64) (float64, error)
}

// Summary aggregates a valuation pass, all values in the primary currency.
type Summary struct {
	TotalMarketValue    float64 `json:"total_market_value" msgpack:"total_market_value"`
	TotalCostBasis      float64 `json:"total_cost_basis" msgpack:"total_cost_basis"`
	TotalUnrealizedGain float64 `json:"total_unrealized_gain" msgpack:"total_unrealized_gain"`
	TotalRealizedGain   float64 `json:"total_realized_gain" msgpack:"total_realized_gain"`
	TotalGain           float64 `json:"total_gain" msgpack:"total_gain"`
	NetContributions    float64 `json:"net_contributions" msgpack:"net_contributions"`
	ReturnPct           float64 `json:"return_pct" msgpack:"return_pct"`
	ExchangeRate        float64 `json:"exchange_rate" msgpack:"exchange_rate"`
	Degraded            bool    `json:"degraded" msgpack:"degraded"`
}

// Result is one full valuation pass.
type Result struct {
	Positions []domain.ValuedPosition `json:"positions" msgpack:"positions"`
	Summary   Summary                 `json:"summary" msgpack:"summary"`
	AsOf      time.Time               `json:"as_of" msgpack:"as_of"`
}

// Service runs valuation passes. Each pass recomputes positions from the
// ledger, prices them, and normalizes to the primary currency. Market data
// failures degrade the pass instead of failing it.
type Service struct {
	positions     PositionSource
	prices        domain.PriceSource
	rates         domain.RateSource
	contributions ContributionSource
	snapshots     *SnapshotRepository
	primary       string
	secondary     string
	log           zerolog.Logger
}

// NewService creates a new valuation service.
// snapshots and contributions may be nil; the related features degrade off.
func NewService(
	positions PositionSource,
	prices domain.PriceSource,
	rates domain.RateSource,
	contributions ContributionSource,
	snapshots *SnapshotRepository,
	primaryCurrency, secondaryCurrency string,
	log zerolog.Logger,
) *Service {
	return &Service{
		positions:     positions,
		prices:        prices,
		rates:         rates,
		contributions: contributions,
		snapshots:     snapshots,
		primary:       primaryCurrency,
		secondary:     secondaryCurrency,
		log:           log.With().Str("service", "valuation").Logger(),
	}
}

// Portfolio runs one valuation pass for the owner.
//
// Missing prices zero out individual positions (Priced=false) without
// aborting. When the price source is entirely unreachable and a snapshot of
// a previous good pass exists, that snapshot is served with Degraded=true.
func (s *Service) Portfolio(ctx context.Context, ownerID int64) (*Result, error) {
	open, err := s.positions.Open(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	rate, err := s.rates.GetRate(ctx, s.primary, s.secondary)
	if err != nil {
		// The rate client exhausts its own fallback chain before erroring,
		// so this is a configuration gap rather than a transient outage.
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	tickers := make([]string, 0, len(open))
	seen := make(map[string]bool, len(open))
	for _, p := range open {
		if !seen[p.Ticker] {
			seen[p.Ticker] = true
			tickers = append(tickers, p.Ticker)
		}
	}

	prices, priceErr := s.prices.GetPrices(ctx, tickers)
	if priceErr != nil && len(prices) == 0 && len(tickers) > 0 {
		if snap := s.lastSnapshot(ownerID); snap != nil {
			s.log.Warn().
				Err(priceErr).
				Int64("owner_id", ownerID).
				Time("as_of", snap.AsOf).
				Msg("Price source unreachable, serving last snapshot")
			snap.Summary.Degraded = true
			return snap, nil
		}
	}

	result := s.value(ctx, ownerID, open, prices, rate)
	result.Summary.Degraded = priceErr != nil

	if priceErr == nil && s.snapshots != nil && len(open) > 0 {
		if err := s.snapshots.Store(ownerID, result); err != nil {
			s.log.Warn().Err(err).Int64("owner_id", ownerID).Msg("Failed to store valuation snapshot")
		}
	}

	return result, nil
}

// value prices and normalizes positions and builds the summary.
func (s *Service) value(ctx context.Context, ownerID int64, open []domain.Position, prices map[string]float64, rate float64) *Result {
	valued := make([]domain.ValuedPosition, 0, len(open))
	var summary Summary
	summary.ExchangeRate = rate

	for _, p := range open {
		price, priced := prices[p.Ticker]

		marketValue := s.normalize(p.Quantity*price, p.Currency, rate)
		costBasis := s.normalize(p.Quantity*p.AvgCost, p.Currency, rate)
		unrealized := marketValue - costBasis

		var returnPct float64
		if costBasis > 0 {
			returnPct = unrealized / costBasis * 100
		}

		valued = append(valued, domain.ValuedPosition{
			Position:       p,
			CurrentPrice:   price,
			MarketValue:    marketValue,
			CostBasis:      costBasis,
			UnrealizedGain: unrealized,
			ReturnPct:      returnPct,
			Priced:         priced,
		})

		summary.TotalMarketValue += marketValue
		summary.TotalCostBasis += costBasis
		summary.TotalUnrealizedGain += unrealized
		summary.TotalRealizedGain += s.normalize(p.RealizedGain, p.Currency, rate)
	}

	summary.TotalGain = summary.TotalUnrealizedGain + summary.TotalRealizedGain
	if summary.TotalCostBasis > 0 {
		summary.ReturnPct = summary.TotalUnrealizedGain / summary.TotalCostBasis * 100
	}

	if s.contributions != nil {
		net, err := s.contributions.NetContributions(ctx, ownerID)
		if err != nil {
			s.log.Warn().Err(err).Int64("owner_id", ownerID).Msg("Failed to load net contributions")
		} else {
			summary.NetContributions = net
		}
	}

	return &Result{
		Positions: valued,
		Summary:   summary,
		AsOf:      time.Now().UTC(),
	}
}

// normalize converts an amount to the primary currency. The reference rate
// is secondary units per one primary unit, so non-primary amounts divide.
func (s *Service) normalize(amount float64, currency string, rate float64) float64 {
	if currency == s.primary || rate == 0 {
		return amount
	}
	return amount / rate
}

func (s *Service) lastSnapshot(ownerID int64) *Result {
	if s.snapshots == nil {
		return nil
	}
	snap, err := s.snapshots.Get(ownerID)
	if err != nil {
		s.log.Debug().Err(err).Int64("owner_id", ownerID).Msg("No usable valuation snapshot")
		return nil
	}
	return snap
}
