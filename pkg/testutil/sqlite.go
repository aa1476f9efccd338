// Package testutil holds helpers shared by package tests.
package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a side connection to a test database, used to check what a store
// wrote without going through the store itself.
type SQLite struct {
	DB   *sql.DB
	Path string
}

// TempDBPath returns a database path inside a per-test directory.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}

// OpenSQLite opens path and closes it when the test ends.
func OpenSQLite(t *testing.T, path string) *SQLite {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &SQLite{DB: db, Path: path}
}

// Exec runs a statement and fails the test on error.
func (s *SQLite) Exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()
	if _, err := s.DB.Exec(query, args...); err != nil {
		t.Fatalf("failed to execute SQL: %v", err)
	}
}

// Count returns the number of rows in table matching where, or all rows
// when where is empty.
func (s *SQLite) Count(t *testing.T, table, where string, args ...interface{}) int {
	t.Helper()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}

	var n int
	if err := s.DB.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

// String reads a single text value.
func (s *SQLite) String(t *testing.T, query string, args ...interface{}) string {
	t.Helper()

	var v sql.NullString
	if err := s.DB.QueryRow(query, args...).Scan(&v); err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	return v.String
}
