package database

import (
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations contains all schema migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_schema_version_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_revisions_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS revisions (
				id TEXT PRIMARY KEY,
				original TEXT NOT NULL,
				report TEXT NOT NULL,
				confidence_before REAL NOT NULL,
				confidence_after REAL NOT NULL,
				total_changes INTEGER NOT NULL,
				total_words_removed INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_revisions_created_at ON revisions(created_at);
		`,
	},
	{
		Version: 3,
		Name:    "create_changes_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS changes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				revision_id TEXT NOT NULL,
				change_type TEXT NOT NULL,
				before TEXT NOT NULL,
				after TEXT NOT NULL,
				impact INTEGER NOT NULL,
				FOREIGN KEY (revision_id) REFERENCES revisions(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_changes_revision_id ON changes(revision_id);
			CREATE INDEX IF NOT EXISTS idx_changes_change_type ON changes(change_type);
		`,
	},
}

// Migrate runs all pending migrations
func (db *DB) Migrate() error {
	// Ensure schema_version table exists
	if _, err := db.conn.Exec(migrations[0].SQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current version
	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log.Printf("Applying migration %d: %s", migration.Version, migration.Name)
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
