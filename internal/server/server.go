// Package server provides the HTTP server and routing for the dashboard API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/database"
	"github.com/jlmoreno/cartera/internal/di"
	cashflowhandlers "github.com/jlmoreno/cartera/internal/modules/cashflow/handlers"
	dividendhandlers "github.com/jlmoreno/cartera/internal/modules/dividends/handlers"
	ledgerhandlers "github.com/jlmoreno/cartera/internal/modules/ledger/handlers"
	userhandlers "github.com/jlmoreno/cartera/internal/modules/users/handlers"
	valuationhandlers "github.com/jlmoreno/cartera/internal/modules/valuation/handlers"
	watchlisthandlers "github.com/jlmoreno/cartera/internal/modules/watchlist/handlers"
)

// Server is the HTTP front of the service.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	container *di.Container
	log       zerolog.Logger
}

// New creates the HTTP server and mounts all routes.
func New(container *di.Container, log zerolog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		container: container,
		log:       log.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", container.Cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Owner-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	c := s.container
	cfg := c.Cfg

	systemHandlers := NewSystemHandlers([]*database.DB{c.LedgerDB, c.CacheDB}, cfg.DataDir, s.log)
	streamHandlers := NewStreamHandlers(c.ValuationService, cfg.StreamInterval, cfg.DevMode, s.log)

	ledgerH := ledgerhandlers.NewHandler(c.TradeRepo, cfg.PrimaryCurrency, s.log)
	valuationH := valuationhandlers.NewHandler(c.ValuationService, c.PortfolioService, s.log)
	cashflowH := cashflowhandlers.NewHandler(
		c.EntryRepo, c.CategoryRepo, c.CashflowService, cfg.PrimaryCurrency, s.log)
	watchlistH := watchlisthandlers.NewHandler(c.WatchlistRepo, c.WatchlistService, s.log)
	dividendH := dividendhandlers.NewHandler(c.DividendService, s.log)
	adminH := userhandlers.NewHandler(c.UserRepo, c.StatsService, s.log)

	s.router.Route("/api", func(r chi.Router) {
		// Unauthenticated probes
		r.Get("/health", systemHandlers.HandleHealth)
		r.Get("/system/info", systemHandlers.HandleSystemInfo)

		// Everything below needs an owner identity
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.log))

			ledgerH.RegisterRoutes(r)
			valuationH.RegisterRoutes(r)
			cashflowH.RegisterRoutes(r)
			watchlistH.RegisterRoutes(r)
			dividendH.RegisterRoutes(r)
			adminH.RegisterRoutes(r)

			r.Get("/stream/summary", streamHandlers.HandleSummaryStream)
		})
	})
}

// requestLogger logs each request with latency at debug level, errors at warn.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		event := s.log.Debug()
		if ww.Status() >= 500 {
			event = s.log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Msg("Request")
	})
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}
