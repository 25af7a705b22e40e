package users

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
)

// OwnerCounter counts records belonging to one owner.
type OwnerCounter interface {
	CountByOwner(ownerID int64) (int64, error)
}

// UserStats is the per-user record census.
type UserStats struct {
	User           domain.User `json:"user"`
	Trades         int64       `json:"trades"`
	CashFlows      int64       `json:"cash_flows"`
	WatchlistItems int64       `json:"watchlist_items"`
}

// Stats is the instance-wide census.
type Stats struct {
	Users               []UserStats `json:"users"`
	TotalUsers          int         `json:"total_users"`
	TotalTrades         int64       `json:"total_trades"`
	TotalCashFlows      int64       `json:"total_cash_flows"`
	TotalWatchlistItems int64       `json:"total_watchlist_items"`
}

// StatsService builds the admin census across all module repositories.
type StatsService struct {
	users     *Repository
	trades    OwnerCounter
	cashFlows OwnerCounter
	watchlist OwnerCounter
	log       zerolog.Logger
}

// NewStatsService creates a new admin stats service.
func NewStatsService(users *Repository, trades, cashFlows, watchlist OwnerCounter, log zerolog.Logger) *StatsService {
	return &StatsService{
		users:     users,
		trades:    trades,
		cashFlows: cashFlows,
		watchlist: watchlist,
		log:       log.With().Str("service", "admin_stats").Logger(),
	}
}

// Collect gathers per-user and total record counts.
func (s *StatsService) Collect() (*Stats, error) {
	userList, err := s.users.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	stats := &Stats{Users: make([]UserStats, 0, len(userList)), TotalUsers: len(userList)}

	for _, u := range userList {
		row := UserStats{User: u}

		if row.Trades, err = s.trades.CountByOwner(u.ID); err != nil {
			return nil, fmt.Errorf("failed to count trades for user %d: %w", u.ID, err)
		}
		if row.CashFlows, err = s.cashFlows.CountByOwner(u.ID); err != nil {
			return nil, fmt.Errorf("failed to count cash flows for user %d: %w", u.ID, err)
		}
		if row.WatchlistItems, err = s.watchlist.CountByOwner(u.ID); err != nil {
			return nil, fmt.Errorf("failed to count watchlist items for user %d: %w", u.ID, err)
		}

		stats.Users = append(stats.Users, row)
		stats.TotalTrades += row.Trades
		stats.TotalCashFlows += row.CashFlows
		stats.TotalWatchlistItems += row.WatchlistItems
	}

	return stats, nil
}
