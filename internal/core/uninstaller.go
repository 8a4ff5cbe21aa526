package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bepinstall/internal/domain"
	"bepinstall/internal/linker"
	"bepinstall/internal/storage/db"
)

// UninstallOptions selects what Uninstall removes
type UninstallOptions struct {
	// Artifacts is the loader allowlist; nil uses domain.DefaultLoaderArtifacts
	Artifacts []string
	// Tracked also removes every file the ledger recorded for the install root
	Tracked bool
}

// UninstallResult lists what was removed
type UninstallResult struct {
	Removed []string // Allowlist entries that existed and were deleted
	Tracked int      // Ledger files deleted
}

// Uninstaller removes the mod loader from a game directory
type Uninstaller struct {
	db     *db.DB
	linker linker.Linker
	logger *slog.Logger
}

// NewUninstaller creates an uninstaller. database may be nil, which makes
// tracked uninstalls a no-op beyond the allowlist.
func NewUninstaller(database *db.DB, logger *slog.Logger) *Uninstaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uninstaller{db: database, linker: linker.NewCopier(), logger: logger}
}

// Uninstall deletes each allowlisted path under installRoot that exists.
// Missing paths are skipped, so running it twice is harmless.
func (u *Uninstaller) Uninstall(ctx context.Context, installRoot string, opts UninstallOptions) (*UninstallResult, error) {
	artifacts := opts.Artifacts
	if artifacts == nil {
		artifacts = domain.DefaultLoaderArtifacts
	}

	result := &UninstallResult{}
	for _, name := range artifacts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		path, err := ResolveInside(installRoot, name)
		if err != nil || path == filepath.Clean(installRoot) {
			u.logger.Warn("skipping unsafe allowlist entry", "entry", name)
			continue
		}
		if _, err := os.Lstat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return result, fmt.Errorf("checking %s: %w", name, err)
		}
		if err := os.RemoveAll(path); err != nil {
			return result, fmt.Errorf("removing %s: %w", name, err)
		}
		u.logger.Debug("removed", "path", path)
		result.Removed = append(result.Removed, name)
	}

	if opts.Tracked && u.db != nil {
		n, err := u.removeTracked(ctx, installRoot)
		result.Tracked = n
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (u *Uninstaller) removeTracked(ctx context.Context, installRoot string) (int, error) {
	files, err := u.db.GetDeployedFiles(installRoot)
	if err != nil {
		return 0, err
	}

	removed, err := u.removeFiles(ctx, installRoot, files)
	if err != nil {
		return removed, err
	}

	if err := u.db.DeleteDeployedFiles(installRoot); err != nil {
		return removed, err
	}
	if err := u.db.DeleteInstalledMods(installRoot); err != nil {
		return removed, err
	}
	return removed, nil
}

// RemoveMod deletes the files the ledger recorded for one mod and forgets it.
// Loader files are left in place. A key the ledger does not know fails with
// domain.ErrModNotFound.
func (u *Uninstaller) RemoveMod(ctx context.Context, installRoot, modKey string) (int, error) {
	if u.db == nil {
		return 0, fmt.Errorf("%w: %s (the ledger is disabled)", domain.ErrModNotFound, modKey)
	}
	files, err := u.db.GetDeployedFilesForMod(installRoot, modKey)
	if err != nil {
		return 0, err
	}

	removed, err := u.removeFiles(ctx, installRoot, files)
	if err != nil {
		return removed, err
	}

	if err := u.db.DeleteDeployedFilesForMod(installRoot, modKey); err != nil {
		return removed, err
	}
	existed, err := u.db.DeleteInstalledMod(installRoot, modKey)
	if err != nil {
		return removed, err
	}
	if !existed && len(files) == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrModNotFound, modKey)
	}
	return removed, nil
}

// removeFiles deletes ledger paths under installRoot, pruning directories
// they leave empty. Paths already gone are not counted.
func (u *Uninstaller) removeFiles(ctx context.Context, installRoot string, files []string) (int, error) {
	removed := 0
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		path, err := ResolveInside(installRoot, rel)
		if err != nil {
			u.logger.Warn("skipping ledger entry outside install root", "path", rel)
			continue
		}
		if _, err := os.Lstat(path); os.IsNotExist(err) {
			continue
		}
		if err := u.linker.Remove(path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", rel, err)
		}
		linker.PruneEmptyDirs(path, installRoot)
		removed++
	}
	return removed, nil
}
