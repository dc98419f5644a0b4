// ABOUTME: Opens the HireOS SQLite database
// ABOUTME: Creates the parent directory, enables WAL, and applies the schema
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// A CLI sync, the MCP server and the web API can hold the same file open at
// once. WAL lets readers proceed during a link write; the busy timeout makes a
// second writer wait up to 5s for the lock instead of failing with SQLITE_BUSY.
const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000"

// OpenDatabase opens (or creates) the database at path and ensures the schema exists.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", path+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection per process serializes this process's writes, so the
	// conditional link update never races itself.
	database.SetMaxOpenConns(1)

	if err := InitSchema(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
