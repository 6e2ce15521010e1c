package database

import (
	"path/filepath"
	"testing"
)

// setupTestDB creates a migrated store in a per-test temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestNew(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "new.db"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()

	if db.conn == nil {
		t.Error("Expected database connection but got nil")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := setupTestDB(t)

	// Re-running must be a no-op, not an error.
	if err := db.Migrate(); err != nil {
		t.Errorf("Second migration failed: %v", err)
	}

	var version int
	if err := db.conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != migrations[len(migrations)-1].Version {
		t.Errorf("Expected schema version %d, got %d", migrations[len(migrations)-1].Version, version)
	}
}
