package users

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	counts map[int64]int64
}

func (s *stubCounter) CountByOwner(ownerID int64) (int64, error) {
	return s.counts[ownerID], nil
}

func TestCollect(t *testing.T) {
	repo := setupTestRepo(t)

	jose, err := repo.Create("jose", true)
	require.NoError(t, err)
	ana, err := repo.Create("ana", false)
	require.NoError(t, err)

	svc := NewStatsService(repo,
		&stubCounter{counts: map[int64]int64{jose.ID: 12, ana.ID: 3}},
		&stubCounter{counts: map[int64]int64{jose.ID: 40}},
		&stubCounter{counts: map[int64]int64{ana.ID: 5}},
		zerolog.Nop(),
	)

	stats, err := svc.Collect()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 15, stats.TotalTrades)
	assert.EqualValues(t, 40, stats.TotalCashFlows)
	assert.EqualValues(t, 5, stats.TotalWatchlistItems)

	require.Len(t, stats.Users, 2)
	assert.Equal(t, "jose", stats.Users[0].User.Username)
	assert.EqualValues(t, 12, stats.Users[0].Trades)
	assert.EqualValues(t, 3, stats.Users[1].Trades)
	assert.EqualValues(t, 5, stats.Users[1].WatchlistItems)
}

func TestCollectNoUsers(t *testing.T) {
	repo := setupTestRepo(t)

	svc := NewStatsService(repo, &stubCounter{}, &stubCounter{}, &stubCounter{}, zerolog.Nop())

	stats, err := svc.Collect()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalUsers)
	assert.Empty(t, stats.Users)
}
