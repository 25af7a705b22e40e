// Package marketdata fetches quotes, watchlist metadata, and dividend
// information from a Yahoo-compatible market data API, with cache-first
// behavior backed by cache.db.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jlmoreno/cartera/internal/clientdata"
	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// Client for a Yahoo-style quote API.
// The price source is unreliable by contract: it may fail entirely or return
// a subset of the requested tickers. Callers must tolerate partial data.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new market data client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("client", "marketdata").Logger(),
		cacheRepo: cacheRepo,
	}
}

// cachedQuote is the structure stored in the quotes cache table.
type cachedQuote struct {
	Price float64 `json:"price"`
}

// quoteResponse mirrors the /v7/finance/quote payload (fields we use).
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice float64  `json:"regularMarketPrice"`
			TrailingPE         *float64 `json:"trailingPE"`
			FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
			FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
			DividendRate       *float64 `json:"trailingAnnualDividendRate"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// chartResponse mirrors the /v8/finance/chart payload (fields we use).
type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
	} `json:"chart"`
}

// GetPrices returns the latest known unit price per ticker.
// Fresh cached prices are used without a network call; the remainder is
// fetched in one batch request. When the fetch fails, stale cached prices
// fill in what they can and the error is returned alongside the partial map
// so the caller can decide how degraded the pass is.
func (c *Client) GetPrices(ctx context.Context, tickers []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(tickers))
	if len(tickers) == 0 {
		return prices, nil
	}

	var missing []string
	for _, ticker := range tickers {
		if price, ok := c.cachedPrice(ticker, true); ok {
			prices[ticker] = price
		} else {
			missing = append(missing, ticker)
		}
	}

	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := c.fetchQuotes(ctx, missing)
	if err != nil {
		// Fill what we can from stale cache; partial data beats none.
		filled := 0
		for _, ticker := range missing {
			if price, ok := c.cachedPrice(ticker, false); ok {
				prices[ticker] = price
				filled++
			}
		}
		c.log.Warn().
			Err(err).
			Int("requested", len(missing)).
			Int("stale_filled", filled).
			Msg("Quote fetch failed, using stale cache where available")
		return prices, fmt.Errorf("quote fetch: %w", err)
	}

	for ticker, price := range fetched {
		prices[ticker] = price
		if c.cacheRepo != nil {
			if err := c.cacheRepo.Store("quotes", ticker, cachedQuote{Price: price}, clientdata.TTLQuote); err != nil {
				c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache quote")
			}
		}
	}

	return prices, nil
}

// GetQuoteInfo returns watchlist metadata for one ticker: current price,
// trailing P/E, 52-week range, and a month of daily closes.
func (c *Client) GetQuoteInfo(ctx context.Context, ticker string) (*domain.QuoteInfo, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("quote_info", ticker)
		if err == nil && data != nil {
			var info domain.QuoteInfo
			if err := json.Unmarshal(data, &info); err == nil {
				return &info, nil
			}
		}
	}

	quotes, err := c.fetchQuoteDetails(ctx, ticker)
	if err != nil {
		if stale := c.staleQuoteInfo(ticker); stale != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Quote info fetch failed, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("quote info for %s: %w", ticker, err)
	}

	closes, err := c.fetchCloseHistory(ctx, ticker, "1mo")
	if err != nil {
		// History is an enrichment; the quote alone is still useful.
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("Close history fetch failed")
	}
	quotes.CloseHistory = closes

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("quote_info", ticker, quotes, clientdata.TTLQuoteInfo); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache quote info")
		}
	}

	return quotes, nil
}

// GetDividendInfo returns dividend metadata for one ticker.
// Tickers that pay no dividend return a zero-rate info, not an error.
func (c *Client) GetDividendInfo(ctx context.Context, ticker string) (*domain.DividendInfo, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("dividend_info", ticker)
		if err == nil && data != nil {
			var info domain.DividendInfo
			if err := json.Unmarshal(data, &info); err == nil {
				return &info, nil
			}
		}
	}

	info, err := c.fetchDividendInfo(ctx, ticker)
	if err != nil {
		if c.cacheRepo != nil {
			if data, cerr := c.cacheRepo.Get("dividend_info", ticker); cerr == nil && data != nil {
				var stale domain.DividendInfo
				if jerr := json.Unmarshal(data, &stale); jerr == nil {
					c.log.Warn().Err(err).Str("ticker", ticker).Msg("Dividend fetch failed, using stale cache")
					return &stale, nil
				}
			}
		}
		return nil, fmt.Errorf("dividend info for %s: %w", ticker, err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("dividend_info", ticker, info, clientdata.TTLDividendInfo); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache dividend info")
		}
	}

	return info, nil
}

// fetchQuotes performs one batch quote request.
func (c *Client) fetchQuotes(ctx context.Context, tickers []string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		c.baseURL, url.QueryEscape(strings.Join(tickers, ",")))

	var parsed quoteResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(parsed.QuoteResponse.Result))
	for _, q := range parsed.QuoteResponse.Result {
		if q.RegularMarketPrice > 0 {
			prices[q.Symbol] = q.RegularMarketPrice
		}
	}

	return prices, nil
}

// fetchQuoteDetails requests one ticker and keeps the metadata fields.
func (c *Client) fetchQuoteDetails(ctx context.Context, ticker string) (*domain.QuoteInfo, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(ticker))

	var parsed quoteResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	for _, q := range parsed.QuoteResponse.Result {
		if q.Symbol != ticker {
			continue
		}
		return &domain.QuoteInfo{
			Price:        q.RegularMarketPrice,
			TrailingPE:   q.TrailingPE,
			FiftyTwoLow:  q.FiftyTwoWeekLow,
			FiftyTwoHigh: q.FiftyTwoWeekHigh,
		}, nil
	}

	return nil, fmt.Errorf("ticker %s not in response", ticker)
}

// fetchCloseHistory returns daily closes for the given range, oldest first.
// Null closes (market holidays) are skipped.
func (c *Client) fetchCloseHistory(ctx context.Context, ticker, rng string) ([]float64, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(ticker), rng)

	var parsed chartResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	raw := parsed.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}

	return closes, nil
}

// fetchDividendInfo combines the quote's annual rate with the chart's
// dividend event history.
func (c *Client) fetchDividendInfo(ctx context.Context, ticker string) (*domain.DividendInfo, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(ticker))

	var parsed quoteResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	info := &domain.DividendInfo{}
	for _, q := range parsed.QuoteResponse.Result {
		if q.Symbol == ticker && q.DividendRate != nil {
			info.AnnualRate = *q.DividendRate
		}
	}

	// Payment history over two years for frequency estimation.
	histEndpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=2y&interval=1d&events=div",
		c.baseURL, url.PathEscape(ticker))

	var chart chartResponse
	if err := c.getJSON(ctx, histEndpoint, &chart); err != nil {
		// The rate alone is enough for a projection.
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("Dividend history fetch failed")
		return info, nil
	}

	if len(chart.Chart.Result) > 0 {
		for _, div := range chart.Chart.Result[0].Events.Dividends {
			info.PaymentDates = append(info.PaymentDates,
				time.Unix(div.Date, 0).UTC().Format("2006-01-02"))
		}
	}

	return info, nil
}

// cachedPrice returns a cached quote price. When freshOnly is true only
// unexpired entries are considered; otherwise stale entries are used too.
func (c *Client) cachedPrice(ticker string, freshOnly bool) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}

	var data []byte
	var err error
	if freshOnly {
		data, err = c.cacheRepo.GetIfFresh("quotes", ticker)
	} else {
		data, err = c.cacheRepo.Get("quotes", ticker)
	}
	if err != nil || data == nil {
		return 0, false
	}

	var q cachedQuote
	if err := json.Unmarshal(data, &q); err != nil {
		return 0, false
	}

	return q.Price, true
}

// staleQuoteInfo returns cached quote info regardless of expiration.
func (c *Client) staleQuoteInfo(ticker string) *domain.QuoteInfo {
	if c.cacheRepo == nil {
		return nil
	}

	data, err := c.cacheRepo.Get("quote_info", ticker)
	if err != nil || data == nil {
		return nil
	}

	var info domain.QuoteInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}

	return &info
}

// getJSON performs a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "cartera/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
