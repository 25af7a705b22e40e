package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobPrunesExpiredOnly(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("quotes", "FRESH", testPayload{Price: 1}, TTLQuote))
	require.NoError(t, repo.Store("quotes", "STALE", testPayload{Price: 2}, -time.Second))
	require.NoError(t, repo.Store("exchangerate", "USD:ARS", testPayload{Price: 3}, -time.Second))

	job := NewCleanupJob(repo, zerolog.Nop())
	require.NoError(t, job.Run())

	data, err := repo.Get("quotes", "FRESH")
	require.NoError(t, err)
	assert.NotNil(t, data)

	data, err = repo.Get("quotes", "STALE")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = repo.Get("exchangerate", "USD:ARS")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCleanupJobName(t *testing.T) {
	job := NewCleanupJob(NewRepository(setupTestDB(t)), zerolog.Nop())
	assert.Equal(t, "cache_cleanup", job.Name())
}
