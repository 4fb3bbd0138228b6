package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Napageneral/profilegen/internal/db"
)

// OpenTestDB creates an in-memory SQLite DB and applies the ledger schema.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: is per-connection.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, _ = conn.Exec("PRAGMA foreign_keys = ON")

	if _, err := conn.Exec(db.Schema()); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return conn
}
