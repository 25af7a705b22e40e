package exchangerate

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/clientdata"
)

func setupCacheRepo(t *testing.T) *clientdata.Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE exchangerate (
		pair       TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	return clientdata.NewRepository(db)
}

func TestGetRateSameCurrency(t *testing.T) {
	client := NewClient("http://unused", nil, 0, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestGetRateFetchesFromAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		w.Write([]byte(`{"rates": {"ARS": 1000.5, "EUR": 0.9}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, 0, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "ARS")
	require.NoError(t, err)
	assert.InDelta(t, 1000.5, rate, 1e-9)
}

func TestGetRateFallsBackToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, 1150.0, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "ARS")
	require.NoError(t, err)
	assert.InDelta(t, 1150.0, rate, 1e-9)
}

func TestGetRateFallsBackToLastGood(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"rates": {"ARS": 950}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, 1150.0, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "ARS")
	require.NoError(t, err)
	assert.InDelta(t, 950, rate, 1e-9)

	// Outage: the last fetched rate wins over the configured default
	fail.Store(true)
	rate, err = client.GetRate(context.Background(), "USD", "ARS")
	require.NoError(t, err)
	assert.InDelta(t, 950, rate, 1e-9)
}

func TestGetRateFallsBackToStaleCache(t *testing.T) {
	cacheRepo := setupCacheRepo(t)

	// Expired entry: only reachable through the stale-fallback path
	require.NoError(t, cacheRepo.Store("exchangerate", "USD:ARS", cachedExchangeRate{Rate: 990}, -1))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, cacheRepo, 1150.0, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "ARS")
	require.NoError(t, err)
	assert.InDelta(t, 990, rate, 1e-9)
}

func TestGetRateNoFallbackAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, 0, zerolog.Nop())

	_, err := client.GetRate(context.Background(), "USD", "ARS")
	assert.Error(t, err)
}

func TestGetRateUsesFreshCache(t *testing.T) {
	cacheRepo := setupCacheRepo(t)
	require.NoError(t, cacheRepo.Store("exchangerate", "USD:ARS", cachedExchangeRate{Rate: 1010}, clientdata.TTLExchangeRate))

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"rates": {"ARS": 2000}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, cacheRepo, 0, zerolog.Nop())

	rate, err := client.GetRate(context.Background(), "USD", "ARS")
	require.NoError(t, err)
	assert.InDelta(t, 1010, rate, 1e-9)
	assert.EqualValues(t, 0, calls.Load())
}
