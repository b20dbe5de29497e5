// Package testsupport opens migrated throwaway databases for tests.
package testsupport

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"timesaver/backend/internal/db"
)

// MigrationsDir resolves the repository's migrations directory from this
// file's location so tests work from any package directory.
func MigrationsDir(t *testing.T) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "resolve testsupport path")
	return filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
}

// OpenDB returns a fully migrated SQLite database in t.TempDir, closed on
// cleanup.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, err = db.RunMigrations(context.Background(), database, MigrationsDir(t))
	require.NoError(t, err)
	return database
}
