package repository

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/bienesraices/boutique/internal/db"
)

// testDB opens a fresh SQLite database under a per-test temp dir and
// runs all migrations, including the Go username backfill.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Init("sqlite", path)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return database
}
