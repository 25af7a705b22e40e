package domain

import "context"

// PriceSource provides market prices for assets. Implementations may fail or
// return partial data; callers must treat a missing ticker as "unvalued",
// never as an error that aborts a computation pass.
type PriceSource interface {
	// GetPrices returns the latest known unit price per ticker, in each
	// ticker's trading currency. Tickers with no known price are absent
	// from the map.
	GetPrices(ctx context.Context, tickers []string) (map[string]float64, error)
}

// RateSource provides the reference exchange rate used for normalization.
type RateSource interface {
	// GetRate returns how many units of 'to' one unit of 'from' buys.
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// QuoteInfoSource provides the richer per-ticker metadata used by the
// watchlist (price, P/E, 52-week range, close history).
type QuoteInfoSource interface {
	GetQuoteInfo(ctx context.Context, ticker string) (*QuoteInfo, error)
}

// DividendSource provides dividend metadata for the projection view.
type DividendSource interface {
	GetDividendInfo(ctx context.Context, ticker string) (*DividendInfo, error)
}
