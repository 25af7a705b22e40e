package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
// A stale price only affects display accuracy, never ledger integrity, so
// these lean short rather than correct.
const (
	// Short-lived data (changes frequently)
	TTLQuote        = 10 * time.Minute // Current price cache for batch lookups
	TTLQuoteInfo    = 10 * time.Minute // Watchlist metadata (price, P/E, 52w range)
	TTLExchangeRate = time.Hour        // Reference exchange rate

	// Weekly-ish data
	TTLDividendInfo = 7 * 24 * time.Hour // Dividend rates and payment calendar
)
