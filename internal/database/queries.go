package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lunabriana98-creator/luna-app/internal/models"
)

// ErrNotFound is returned when a revision does not exist.
var ErrNotFound = fmt.Errorf("revision not found")

// SaveRevision inserts or replaces a revision and its per-change rows.
func (db *DB) SaveRevision(rev *models.Revision) error {
	reportJSON, err := json.Marshal(rev.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO revisions (id, original, report, confidence_before, confidence_after,
			total_changes, total_words_removed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			original = excluded.original,
			report = excluded.report,
			confidence_before = excluded.confidence_before,
			confidence_after = excluded.confidence_after,
			total_changes = excluded.total_changes,
			total_words_removed = excluded.total_words_removed,
			updated_at = excluded.updated_at
	`, rev.ID, rev.Report.Original, reportJSON, rev.Report.ConfidenceBefore,
		rev.Report.ConfidenceAfter, rev.Report.TotalChanges,
		rev.Report.TotalWordsRemoved, rev.CreatedAt, rev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}

	// Replace change rows wholesale; they mirror the report JSON.
	if _, err := tx.Exec("DELETE FROM changes WHERE revision_id = ?", rev.ID); err != nil {
		return fmt.Errorf("failed to clear changes: %w", err)
	}
	for _, ch := range rev.Report.Changes {
		_, err = tx.Exec(`
			INSERT INTO changes (revision_id, change_type, before, after, impact)
			VALUES (?, ?, ?, ?, ?)
		`, rev.ID, string(ch.ChangeType), ch.Before, ch.After, ch.Impact)
		if err != nil {
			return fmt.Errorf("failed to insert change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanRevision(scan func(dest ...any) error) (*models.Revision, error) {
	var (
		id         string
		reportJSON string
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := scan(&id, &reportJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var report models.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &models.Revision{
		ID:        id,
		Report:    report,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// GetRevision retrieves a revision by ID.
func (db *DB) GetRevision(id string) (*models.Revision, error) {
	row := db.conn.QueryRow(`
		SELECT id, report, created_at, updated_at
		FROM revisions
		WHERE id = ?
	`, id)

	rev, err := scanRevision(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}
	return rev, nil
}

// ListRevisions retrieves revisions newest-first with pagination.
func (db *DB) ListRevisions(limit, offset int) ([]*models.Revision, error) {
	rows, err := db.conn.Query(`
		SELECT id, report, created_at, updated_at
		FROM revisions
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*models.Revision
	for rows.Next() {
		rev, err := scanRevision(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		revisions = append(revisions, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return revisions, nil
}

// GetRevisionsByChangeType retrieves all revisions that recorded at least one
// change of the given type.
func (db *DB) GetRevisionsByChangeType(changeType models.ChangeType) ([]*models.Revision, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT r.id, r.report, r.created_at, r.updated_at
		FROM revisions r
		INNER JOIN changes c ON r.id = c.revision_id
		WHERE c.change_type = ?
		ORDER BY r.created_at DESC, r.id
	`, string(changeType))
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions by change type: %w", err)
	}
	defer rows.Close()

	var revisions []*models.Revision
	for rows.Next() {
		rev, err := scanRevision(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		revisions = append(revisions, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return revisions, nil
}

// DeleteRevision deletes a revision by ID.
func (db *DB) DeleteRevision(id string) error {
	result, err := db.conn.Exec("DELETE FROM revisions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete revision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Stats aggregates all stored revisions into session trend figures. An empty
// store yields zeros.
func (db *DB) Stats() (*models.SessionStats, error) {
	stats := &models.SessionStats{}

	err := db.conn.QueryRow(`
		SELECT COUNT(*),
			COALESCE(AVG(confidence_after - confidence_before), 0),
			COALESCE(MAX(confidence_after - confidence_before), 0),
			COALESCE(SUM(total_changes), 0),
			COALESCE(SUM(total_words_removed), 0)
		FROM revisions
	`).Scan(&stats.TotalRevisions, &stats.AverageImprovement,
		&stats.BestImprovement, &stats.TotalChanges, &stats.TotalWordsRemoved)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return stats, nil
}
