// Package portfolio derives positions from the trade ledger.
// Positions are never persisted: every pass recomputes them from the full
// trade history, so add/delete of a trade is automatically reflected.
package portfolio

import (
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// Epsilon absorbs floating-point residue from repeated fractional trades.
// A position with net quantity at or below it counts as closed.
const Epsilon = 1e-6

// Engine computes positions using the weighted-average cost method.
// The average is taken over all buys regardless of interleaved sells, so the
// result is independent of trade order.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new position engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("service", "position_engine").Logger(),
	}
}

type groupKey struct {
	ticker   string
	currency string
}

// Compute derives one position per (ticker, currency) group.
//
// Per group: average cost = total buy cost / total bought; realized gain =
// sale proceeds - average cost x total sold; net quantity = bought - sold.
// Sells never move the average cost of remaining shares. Groups with sells
// but no buys keep a zero average cost, so the full proceeds surface as
// realized gain; that usually means unowned shares were sold, so it is
// logged but not rejected.
func (e *Engine) Compute(trades []domain.Trade) []domain.Position {
	type accumulator struct {
		totalBought  float64
		totalBuyCost float64
		totalSold    float64
		saleProceeds float64
	}

	groups := make(map[groupKey]*accumulator)
	var order []groupKey

	for _, t := range trades {
		key := groupKey{ticker: t.Ticker, currency: t.Currency}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{}
			groups[key] = acc
			order = append(order, key)
		}

		switch t.Side {
		case domain.SideBuy:
			acc.totalBought += t.Quantity
			acc.totalBuyCost += t.Quantity * t.UnitPrice
		case domain.SideSell:
			acc.totalSold += t.Quantity
			acc.saleProceeds += t.Quantity * t.UnitPrice
		}
	}

	positions := make([]domain.Position, 0, len(groups))
	for _, key := range order {
		acc := groups[key]

		var avgCost float64
		if acc.totalBought > 0 {
			avgCost = acc.totalBuyCost / acc.totalBought
		} else if acc.totalSold > 0 {
			e.log.Warn().
				Str("ticker", key.ticker).
				Str("currency", key.currency).
				Float64("sold", acc.totalSold).
				Msg("Sells recorded with no matching buys, proceeds count as pure gain")
		}

		positions = append(positions, domain.Position{
			Ticker:       key.ticker,
			Currency:     key.currency,
			Quantity:     acc.totalBought - acc.totalSold,
			AvgCost:      avgCost,
			RealizedGain: acc.saleProceeds - avgCost*acc.totalSold,
		})
	}

	return positions
}

// OpenPositions filters to positions still held.
func OpenPositions(positions []domain.Position) []domain.Position {
	open := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		if p.Quantity > Epsilon {
			open = append(open, p)
		}
	}
	return open
}
