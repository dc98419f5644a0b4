// ABOUTME: Shared helpers for database tests
// ABOUTME: Opens a fresh file-backed SQLite database per test
package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return database
}
