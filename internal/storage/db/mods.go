package db

import (
	"fmt"
	"time"

	"bepinstall/internal/domain"
)

// SaveInstalledMod inserts or updates the ledger record for a mod
func (d *DB) SaveInstalledMod(mod *domain.InstalledMod) error {
	installedAt := mod.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	_, err := d.Exec(`
		INSERT INTO installed_mods (install_root, mod_key, name, version, download_url, installed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(install_root, mod_key) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			download_url = excluded.download_url,
			installed_at = excluded.installed_at
	`, mod.InstallRoot, mod.Key, mod.Name, mod.Version, mod.DownloadURL, installedAt)
	if err != nil {
		return fmt.Errorf("saving installed mod: %w", err)
	}
	return nil
}

// GetInstalledMods returns the mods recorded for an install root with their file counts
func (d *DB) GetInstalledMods(installRoot string) ([]domain.InstalledMod, error) {
	rows, err := d.Query(`
		SELECT m.install_root, m.mod_key, m.name, COALESCE(m.version, ''), COALESCE(m.download_url, ''), m.installed_at,
			(SELECT COUNT(*) FROM deployed_files f WHERE f.install_root = m.install_root AND f.mod_key = m.mod_key)
		FROM installed_mods m
		WHERE m.install_root = ?
		ORDER BY m.installed_at ASC, m.mod_key ASC
	`, installRoot)
	if err != nil {
		return nil, fmt.Errorf("querying installed mods: %w", err)
	}
	defer rows.Close()

	var mods []domain.InstalledMod
	for rows.Next() {
		var mod domain.InstalledMod
		if err := rows.Scan(&mod.InstallRoot, &mod.Key, &mod.Name, &mod.Version, &mod.DownloadURL, &mod.InstalledAt, &mod.Files); err != nil {
			return nil, fmt.Errorf("scanning installed mod: %w", err)
		}
		mods = append(mods, mod)
	}

	return mods, rows.Err()
}

// DeleteInstalledMods removes every mod record for an install root
func (d *DB) DeleteInstalledMods(installRoot string) error {
	if _, err := d.Exec(`DELETE FROM installed_mods WHERE install_root = ?`, installRoot); err != nil {
		return fmt.Errorf("deleting installed mods: %w", err)
	}
	return nil
}

// DeleteInstalledMod removes one mod's record. It reports whether a row existed.
func (d *DB) DeleteInstalledMod(installRoot, modKey string) (bool, error) {
	res, err := d.Exec(`DELETE FROM installed_mods WHERE install_root = ? AND mod_key = ?`, installRoot, modKey)
	if err != nil {
		return false, fmt.Errorf("deleting installed mod %s: %w", modKey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting installed mod %s: %w", modKey, err)
	}
	return n > 0, nil
}
