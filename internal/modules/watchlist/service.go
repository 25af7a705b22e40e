package watchlist

import (
	"context"

	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
)

// rocPeriod is the lookback (trading days) for the trailing return.
const rocPeriod = 7

// EnrichedItem is a watchlist item with current market metadata attached.
// Market data fields are nil/zero when the source had nothing for the
// ticker; the item itself is always returned.
type EnrichedItem struct {
	domain.WatchlistItem
	Price            float64  `json:"price"`
	TrailingPE       *float64 `json:"trailing_pe,omitempty"`
	FiftyTwoLow      *float64 `json:"fifty_two_week_low,omitempty"`
	FiftyTwoHigh     *float64 `json:"fifty_two_week_high,omitempty"`
	RangePositionPct *float64 `json:"range_position_pct,omitempty"`
	Return7DPct      *float64 `json:"return_7d_pct,omitempty"`
	DistanceToTarget *float64 `json:"distance_to_target_pct,omitempty"`
	Priced           bool     `json:"priced"`
}

// Service enriches watchlist items with quote metadata.
type Service struct {
	repo   *Repository
	quotes domain.QuoteInfoSource
	log    zerolog.Logger
}

// NewService creates a new watchlist service.
func NewService(repo *Repository, quotes domain.QuoteInfoSource, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		quotes: quotes,
		log:    log.With().Str("service", "watchlist").Logger(),
	}
}

// List returns the owner's watchlist with market metadata. A ticker the
// quote source cannot serve comes back unpriced rather than failing the
// whole list.
func (s *Service) List(ctx context.Context, ownerID int64) ([]EnrichedItem, error) {
	items, err := s.repo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedItem, 0, len(items))
	for _, item := range items {
		enriched = append(enriched, s.enrich(ctx, item))
	}

	return enriched, nil
}

func (s *Service) enrich(ctx context.Context, item domain.WatchlistItem) EnrichedItem {
	out := EnrichedItem{WatchlistItem: item}

	info, err := s.quotes.GetQuoteInfo(ctx, item.Ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", item.Ticker).Msg("Quote info unavailable for watchlist item")
		return out
	}

	out.Price = info.Price
	out.Priced = info.Price > 0
	out.TrailingPE = info.TrailingPE
	out.FiftyTwoLow = info.FiftyTwoLow
	out.FiftyTwoHigh = info.FiftyTwoHigh

	if info.FiftyTwoLow != nil && info.FiftyTwoHigh != nil && *info.FiftyTwoHigh > *info.FiftyTwoLow && out.Priced {
		pos := (info.Price - *info.FiftyTwoLow) / (*info.FiftyTwoHigh - *info.FiftyTwoLow) * 100
		out.RangePositionPct = &pos
	}

	if out.Priced && item.TargetPrice > 0 {
		dist := (item.TargetPrice - info.Price) / info.Price * 100
		out.DistanceToTarget = &dist
	}

	// Roc needs period+1 points; the last output value is the trailing
	// return over the lookback window.
	if len(info.CloseHistory) > rocPeriod {
		roc := talib.Roc(info.CloseHistory, rocPeriod)
		if len(roc) > 0 {
			ret := roc[len(roc)-1]
			out.Return7DPct = &ret
		}
	}

	return out
}
