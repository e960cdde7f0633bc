package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "habits", "daily_completions", "user_progress", "activities"} {
		var name string
		err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	version, dirty, err := Version(db)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestForeignKeysEnabled(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.Get(&enabled, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, enabled)
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "lockedin.db"))
	require.NoError(t, err)
	defer db.Close()
	// no idle connection is kept, so each query opens a new one
	db.SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var enabled, timeout int
		require.NoError(t, db.Get(&enabled, "PRAGMA foreign_keys"))
		require.NoError(t, db.Get(&timeout, "PRAGMA busy_timeout"))
		assert.Equal(t, 1, enabled)
		assert.Equal(t, 5000, timeout)
	}
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys%281%29&_pragma=busy_timeout%285000%29", withPragmas(":memory:"))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=foreign_keys%281%29&_pragma=busy_timeout%285000%29", withPragmas("file:x.db?mode=rwc"))
}

func TestCompletionUniquePerDay(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	db.MustExec("INSERT INTO users (id, username, password_hash) VALUES ('u1', 'ada', 'x')")
	db.MustExec("INSERT INTO habits (id, user_id, title, xp, category) VALUES ('h1', 'u1', 'Read', 20, 'mindset')")
	db.MustExec("INSERT INTO daily_completions (id, user_id, habit_id, date) VALUES ('c1', 'u1', 'h1', '2026-01-01')")

	_, err = db.Exec("INSERT INTO daily_completions (id, user_id, habit_id, date) VALUES ('c2', 'u1', 'h1', '2026-01-01')")
	assert.Error(t, err)

	// deleting the user cascades through habits to completions
	db.MustExec("DELETE FROM users WHERE id = 'u1'")
	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM daily_completions"))
	assert.Zero(t, count)
}
