package portfolio

import (
	"fmt"

	"github.com/jlmoreno/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// TradeLister is the slice of the trade repository this service needs.
type TradeLister interface {
	ListByOwner(ownerID int64) ([]domain.Trade, error)
}

// Service derives positions for an owner from their trade history.
type Service struct {
	trades TradeLister
	engine *Engine
	log    zerolog.Logger
}

// NewService creates a new portfolio service.
func NewService(trades TradeLister, engine *Engine, log zerolog.Logger) *Service {
	return &Service{
		trades: trades,
		engine: engine,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Positions recomputes all positions, closed ones included.
func (s *Service) Positions(ownerID int64) ([]domain.Position, error) {
	trades, err := s.trades.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return s.engine.Compute(trades), nil
}

// Open recomputes positions and keeps only those still held.
func (s *Service) Open(ownerID int64) ([]domain.Position, error) {
	positions, err := s.Positions(ownerID)
	if err != nil {
		return nil, err
	}
	return OpenPositions(positions), nil
}
