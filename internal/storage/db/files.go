package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// SaveDeployedFile records that a file under installRoot was placed by a mod.
// Uses upsert so the most recent mod to write a path owns it.
func (d *DB) SaveDeployedFile(installRoot, relativePath, modKey string) error {
	_, err := d.Exec(`
		INSERT INTO deployed_files (install_root, relative_path, mod_key)
		VALUES (?, ?, ?)
		ON CONFLICT(install_root, relative_path) DO UPDATE SET
			mod_key = excluded.mod_key,
			deployed_at = CURRENT_TIMESTAMP
	`, installRoot, relativePath, modKey)
	if err != nil {
		return fmt.Errorf("saving deployed file: %w", err)
	}
	return nil
}

// GetFileOwner returns the mod key that owns a path, or "" if none does.
func (d *DB) GetFileOwner(installRoot, relativePath string) (string, error) {
	var owner string
	err := d.QueryRow(`
		SELECT mod_key FROM deployed_files
		WHERE install_root = ? AND relative_path = ?
	`, installRoot, relativePath).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("getting file owner: %w", err)
	}
	return owner, nil
}

// GetDeployedFiles returns every tracked path under installRoot
func (d *DB) GetDeployedFiles(installRoot string) ([]string, error) {
	return d.queryPaths(`
		SELECT relative_path FROM deployed_files
		WHERE install_root = ?
		ORDER BY relative_path
	`, installRoot)
}

// GetDeployedFilesForMod returns all paths placed by a specific mod
func (d *DB) GetDeployedFilesForMod(installRoot, modKey string) ([]string, error) {
	return d.queryPaths(`
		SELECT relative_path FROM deployed_files
		WHERE install_root = ? AND mod_key = ?
		ORDER BY relative_path
	`, installRoot, modKey)
}

func (d *DB) queryPaths(query string, args ...interface{}) ([]string, error) {
	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying deployed files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// DeleteDeployedFiles removes all file records for an install root
func (d *DB) DeleteDeployedFiles(installRoot string) error {
	if _, err := d.Exec(`DELETE FROM deployed_files WHERE install_root = ?`, installRoot); err != nil {
		return fmt.Errorf("deleting deployed files: %w", err)
	}
	return nil
}

// DeleteDeployedFilesForMod removes the file records one mod owns
func (d *DB) DeleteDeployedFilesForMod(installRoot, modKey string) error {
	_, err := d.Exec(`DELETE FROM deployed_files WHERE install_root = ? AND mod_key = ?`, installRoot, modKey)
	if err != nil {
		return fmt.Errorf("deleting deployed files for %s: %w", modKey, err)
	}
	return nil
}
