package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE notes (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	body TEXT NOT NULL
);
`

func setupSQLDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func countNotes(t *testing.T, db *sql.DB) int {
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count))
	return count
}

func TestWithTransactionCommits(t *testing.T) {
	db := setupSQLDB(t)

	err := WithTransaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO notes (body) VALUES ('a')"); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO notes (body) VALUES ('b')")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, countNotes(t, db))
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := setupSQLDB(t)

	err := WithTransaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO notes (body) VALUES ('a')"); err != nil {
			return err
		}
		return assert.AnError
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, countNotes(t, db))
}

func TestWithTransactionRecoversPanic(t *testing.T) {
	db := setupSQLDB(t)

	err := WithTransaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO notes (body) VALUES ('a')"); err != nil {
			return err
		}
		panic("boom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, 0, countNotes(t, db))
}

func TestWithTransactionNilDB(t *testing.T) {
	assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
}

func TestNewWithCheckpointAndHealthCheck(t *testing.T) {
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "scratch.db"),
		Profile: ProfileLedger,
		Name:    "scratch",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO notes (body) VALUES ('a')")
	require.NoError(t, err)

	require.NoError(t, db.WALCheckpoint("TRUNCATE"))
	require.NoError(t, db.WALCheckpoint("")) // defaults to TRUNCATE
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestNewDefaultsToLedgerProfile(t *testing.T) {
	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "default.db"),
		Name: "default",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var sync int
	require.NoError(t, db.QueryRow("PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, 2, sync) // FULL
}
