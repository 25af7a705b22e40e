package users

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmoreno/cartera/internal/domain"
)

const testSchema = `
CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	is_admin   INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
`

func setupTestRepo(t *testing.T) *Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return NewRepository(db, zerolog.Nop())
}

func TestCreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)

	created, err := repo.Create("jose", true)
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jose", got.Username)
	assert.True(t, got.IsAdmin)
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create("jose", false)
	require.NoError(t, err)

	_, err = repo.Create("jose", false)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestCreateEmptyUsername(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create("   ", false)
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}

func TestGetByIDNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetByID(999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListOrderedByID(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create("jose", true)
	require.NoError(t, err)
	_, err = repo.Create("ana", false)
	require.NoError(t, err)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "jose", list[0].Username)
	assert.Equal(t, "ana", list[1].Username)
}
