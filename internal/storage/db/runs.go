package db

import (
	"database/sql"
	"fmt"
	"time"

	"bepinstall/internal/domain"
)

// StartRun records a run as running
func (d *DB) StartRun(id string, kind domain.RunKind, installRoot string, startedAt time.Time) error {
	_, err := d.Exec(`
		INSERT INTO runs (id, kind, state, install_root, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, string(kind), domain.StateRunning, installRoot, startedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// FinishRun stores the terminal state of a run
func (d *DB) FinishRun(id string, state domain.RunState, installRoot, message string, finishedAt time.Time) error {
	_, err := d.Exec(`
		UPDATE runs SET state = ?, install_root = COALESCE(NULLIF(?, ''), install_root), message = ?, finished_at = ?
		WHERE id = ?
	`, state, installRoot, message, finishedAt, id)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first
func (d *DB) RecentRuns(limit int) ([]domain.RunRecord, error) {
	rows, err := d.Query(`
		SELECT id, kind, state, COALESCE(install_root, ''), COALESCE(message, ''), started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var r domain.RunRecord
		var kind string
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &kind, &r.State, &r.InstallRoot, &r.Message, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Kind = domain.RunKind(kind)
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
