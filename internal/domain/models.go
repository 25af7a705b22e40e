// Package domain contains the core types shared across modules.
// Types here are pure data and interfaces - no infrastructure dependencies.
package domain

import "time"

// Trade sides. Stored lowercase in the ledger.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Cash flow directions.
const (
	DirectionIncome  = "income"
	DirectionExpense = "expense"
)

// CategoryInvestments is the cash-flow category treated as a transfer into
// the brokerage ledger rather than spending. Expenses in this category are
// capital contributions; income entries are withdrawals. Counting them as
// ordinary spending would double-count money that also shows up as cost
// basis in the trade ledger.
const CategoryInvestments = "Investments"

// Trade is a single buy or sell recorded in the ledger.
// Trades are immutable once created; the only mutation is deletion.
type Trade struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Ticker    string    `json:"ticker"`
	Side      string    `json:"side"` // buy | sell
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Currency  string    `json:"currency"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Position is the net holding of one asset in one currency, derived from
// the full trade history. It is never persisted - every query recomputes it.
// AvgCost and RealizedGain are in the position's own currency.
type Position struct {
	Ticker       string  `json:"ticker"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	RealizedGain float64 `json:"realized_gain"`
}

// ValuedPosition is a Position priced and normalized to the primary currency.
// Priced is false when no market price was available; such positions carry a
// zero market value but are still listed.
type ValuedPosition struct {
	Position
	CurrentPrice   float64 `json:"current_price"` // in the position's currency
	MarketValue    float64 `json:"market_value"`  // normalized
	CostBasis      float64 `json:"cost_basis"`    // normalized
	UnrealizedGain float64 `json:"unrealized_gain"`
	ReturnPct      float64 `json:"return_pct"`
	Priced         bool    `json:"priced"`
}

// CashFlowEntry is a single income or expense record.
type CashFlowEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Direction   string    `json:"direction"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category is a user-defined cash-flow category.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	OwnerID   int64  `json:"owner_id"`
}

// WatchlistItem is an asset the user tracks without necessarily holding it.
type WatchlistItem struct {
	ID          string  `json:"id"`
	Ticker      string  `json:"ticker"`
	TargetPrice float64 `json:"target_price"`
	Notes       string  `json:"notes"`
	OwnerID     int64   `json:"owner_id"`
}

// User is an owner record. Credentials and sessions are handled by the
// authenticating front - the core only needs identity and the admin flag.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// QuoteInfo carries the per-ticker market metadata used by the watchlist.
type QuoteInfo struct {
	Price        float64   `json:"price"`
	TrailingPE   *float64  `json:"trailing_pe,omitempty"`
	FiftyTwoLow  *float64  `json:"fifty_two_week_low,omitempty"`
	FiftyTwoHigh *float64  `json:"fifty_two_week_high,omitempty"`
	CloseHistory []float64 `json:"close_history,omitempty"` // oldest first
}

// DividendInfo carries per-ticker dividend metadata from the price source.
type DividendInfo struct {
	AnnualRate   float64  `json:"annual_rate"`             // per share, ticker currency
	PaymentDates []string `json:"payment_dates,omitempty"` // YYYY-MM-DD, historical
	NextExDate   string   `json:"next_ex_date,omitempty"`
	NextPayDate  string   `json:"next_pay_date,omitempty"`
}
