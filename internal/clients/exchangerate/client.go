// Package exchangerate provides currency exchange rate fetching and caching functionality.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jlmoreno/cartera/internal/clientdata"
	"github.com/rs/zerolog"
)

// Client fetches reference exchange rates with a layered fallback chain:
// fresh cache, live API, stale cache, last rate fetched this process, and
// finally a configured default. A rate lookup never hard-fails unless every
// layer is empty and no default is configured.
type Client struct {
	baseURL     string
	client      *http.Client
	log         zerolog.Logger
	cacheRepo   *clientdata.Repository
	defaultRate float64

	mu       sync.Mutex
	lastGood map[string]float64 // pair -> last successfully fetched rate
}

// NewClient creates a new exchange rate client.
// cacheRepo is optional - if nil, persistent caching is disabled.
// defaultRate is the fixed fallback when no rate was ever retrieved (0 disables it).
func NewClient(baseURL string, cacheRepo *clientdata.Repository, defaultRate float64, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log.With().Str("client", "exchangerate").Logger(),
		cacheRepo:   cacheRepo,
		defaultRate: defaultRate,
		lastGood:    make(map[string]float64),
	}
}

// cachedExchangeRate is the structure stored in the cache
type cachedExchangeRate struct {
	Rate float64 `json:"rate"`
}

// GetRate returns how many units of toCurrency one unit of fromCurrency buys.
// If the API fails, stale cached data is returned if available (stale data > no data).
func (c *Client) GetRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1.0, nil
	}

	cacheKey := fromCurrency + ":" + toCurrency

	// Check persistent cache for fresh data
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("exchangerate", cacheKey)
		if err == nil && data != nil {
			var cached cachedExchangeRate
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("from", fromCurrency).
					Str("to", toCurrency).
					Float64("rate", cached.Rate).
					Msg("Cache hit")
				c.remember(cacheKey, cached.Rate)
				return cached.Rate, nil
			}
		}
	}

	rate, err := c.fetch(ctx, fromCurrency, toCurrency)
	if err != nil {
		if fallback, ok := c.fallbackRate(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("from", fromCurrency).
				Str("to", toCurrency).
				Float64("rate", fallback).
				Msg("Rate fetch failed, using fallback")
			return fallback, nil
		}
		return 0, fmt.Errorf("exchange rate %s->%s: %w", fromCurrency, toCurrency, err)
	}

	// Cache persistently
	if c.cacheRepo != nil {
		cached := cachedExchangeRate{Rate: rate}
		if err := c.cacheRepo.Store("exchangerate", cacheKey, cached, clientdata.TTLExchangeRate); err != nil {
			c.log.Warn().Err(err).Str("pair", cacheKey).Msg("Failed to cache exchange rate")
		}
	}
	c.remember(cacheKey, rate)

	c.log.Info().
		Str("from", fromCurrency).
		Str("to", toCurrency).
		Float64("rate", rate).
		Msg("Fetched rate")

	return rate, nil
}

// fetch performs the live API call.
func (c *Client) fetch(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, fromCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	rate, exists := result.Rates[toCurrency]
	if !exists || rate <= 0 {
		return 0, fmt.Errorf("rate not found for %s->%s", fromCurrency, toCurrency)
	}

	return rate, nil
}

// fallbackRate walks the fallback chain: stale persistent cache, last rate
// fetched during this process, configured default.
func (c *Client) fallbackRate(cacheKey string) (float64, bool) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.Get("exchangerate", cacheKey)
		if err == nil && data != nil {
			var cached cachedExchangeRate
			if err := json.Unmarshal(data, &cached); err == nil && cached.Rate > 0 {
				return cached.Rate, true
			}
		}
	}

	c.mu.Lock()
	last, ok := c.lastGood[cacheKey]
	c.mu.Unlock()
	if ok {
		return last, true
	}

	if c.defaultRate > 0 {
		return c.defaultRate, true
	}

	return 0, false
}

func (c *Client) remember(cacheKey string, rate float64) {
	c.mu.Lock()
	c.lastGood[cacheKey] = rate
	c.mu.Unlock()
}
