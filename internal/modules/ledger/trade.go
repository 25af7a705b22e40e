// Package ledger manages the trade ledger: the append-only record of buys
// and sells from which every position is derived.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jlmoreno/cartera/internal/domain"
)

// cryptoTickers are bare crypto symbols users commonly type. The market data
// API only knows the -USD suffixed form.
var cryptoTickers = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "ADA": true, "XRP": true,
	"DOT": true, "DOGE": true, "AVAX": true, "MATIC": true, "LINK": true,
	"LTC": true, "BCH": true, "XLM": true, "ATOM": true, "UNI": true,
	"ETC": true, "FIL": true, "NEAR": true,
}

// NormalizeTicker uppercases a ticker and maps bare crypto symbols to the
// market data API's -USD suffixed form (BTC -> BTC-USD).
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if cryptoTickers[t] {
		return t + "-USD"
	}
	return t
}

// TradeInput is the raw user-submitted form of a trade.
type TradeInput struct {
	Date      string  `json:"date"`
	Ticker    string  `json:"ticker"`
	Side      string  `json:"side"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

// NewTrade validates and normalizes a trade input into a persistable Trade.
// Currency defaults are resolved here, at ingestion; records are always
// stored with an explicit currency.
func NewTrade(in TradeInput, defaultCurrency string, ownerID int64) (*domain.Trade, error) {
	ticker := NormalizeTicker(in.Ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", domain.ErrInvalid)
	}

	side := strings.ToLower(strings.TrimSpace(in.Side))
	if side != domain.SideBuy && side != domain.SideSell {
		return nil, fmt.Errorf("%w: side must be %q or %q", domain.ErrInvalid, domain.SideBuy, domain.SideSell)
	}

	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalid)
	}
	if in.UnitPrice <= 0 {
		return nil, fmt.Errorf("%w: unit price must be positive", domain.ErrInvalid)
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalid)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	return &domain.Trade{
		ID:        uuid.NewString(),
		Date:      in.Date,
		Ticker:    ticker,
		Side:      side,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Currency:  currency,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
