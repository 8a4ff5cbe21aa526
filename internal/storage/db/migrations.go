package db

import "fmt"

// schema lists the ledger's migrations in order. Each entry runs in one
// transaction and bumps PRAGMA user_version by one. Append, never edit.
var schema = [][]string{
	// 1: what was installed where
	{
		`CREATE TABLE installed_mods (
			install_root TEXT NOT NULL,
			mod_key      TEXT NOT NULL,
			name         TEXT NOT NULL,
			version      TEXT,
			download_url TEXT,
			installed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (install_root, mod_key)
		)`,
		`CREATE TABLE deployed_files (
			install_root  TEXT NOT NULL,
			relative_path TEXT NOT NULL,
			mod_key       TEXT NOT NULL,
			deployed_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (install_root, relative_path)
		)`,
		`CREATE INDEX idx_deployed_files_mod ON deployed_files (install_root, mod_key)`,
		`CREATE TABLE auth_tokens (
			source_id  TEXT PRIMARY KEY,
			api_key    TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	// 2: run history
	{
		`CREATE TABLE runs (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			state        INTEGER NOT NULL,
			install_root TEXT,
			message      TEXT,
			started_at   DATETIME NOT NULL,
			finished_at  DATETIME
		)`,
		`CREATE INDEX idx_runs_started ON runs (started_at)`,
	},
}

// SchemaVersion reports the migration level of the open database
func (d *DB) SchemaVersion() (int, error) {
	var v int
	if err := d.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

func (d *DB) migrate() error {
	current, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	if current > len(schema) {
		return fmt.Errorf("database schema %d is newer than this binary (%d)", current, len(schema))
	}

	for v := current; v < len(schema); v++ {
		tx, err := d.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		for _, stmt := range schema[v] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", v+1, err)
			}
		}
		// PRAGMA takes no bind parameters
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}
