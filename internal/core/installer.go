package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bepinstall/internal/domain"
	"bepinstall/internal/storage/cache"
	"bepinstall/internal/storage/db"
)

// InstallResult describes one installed archive
type InstallResult struct {
	Entry  domain.ModEntry
	Files  []string // Placed files relative to the install root
	Bytes  int64    // Archive size
	Cached bool     // Archive came from the cache instead of the network
	// Replaced lists placed files the ledger had recorded for another mod
	Replaced []string
}

// ArchiveInstaller downloads, extracts and places one manifest entry
type ArchiveInstaller struct {
	downloader *Downloader
	extractor  *Extractor
	placer     *Placer
	cache      *cache.Cache // nil disables archive reuse
	db         *db.DB       // nil disables the ledger
	tempDir    string
	logger     *slog.Logger
}

// NewArchiveInstaller creates an installer. cache and database may be nil.
func NewArchiveInstaller(downloader *Downloader, placer *Placer, archiveCache *cache.Cache, database *db.DB, logger *slog.Logger) *ArchiveInstaller {
	if downloader == nil {
		downloader = NewDownloader(nil)
	}
	if placer == nil {
		placer = NewPlacer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveInstaller{
		downloader: downloader,
		extractor:  NewExtractor(),
		placer:     placer,
		cache:      archiveCache,
		db:         database,
		logger:     logger,
	}
}

// SetTempDir sets where archives are downloaded and extracted ("" is the system temp dir)
func (a *ArchiveInstaller) SetTempDir(dir string) {
	a.tempDir = dir
}

// Install places entry into installRoot
func (a *ArchiveInstaller) Install(ctx context.Context, entry domain.ModEntry, installRoot string) (*InstallResult, error) {
	return a.InstallWithProgress(ctx, entry, installRoot, nil)
}

// InstallWithProgress is Install with download progress reporting.
// The downloaded temp file and the extraction dir are removed on every path,
// the file first.
func (a *ArchiveInstaller) InstallWithProgress(ctx context.Context, entry domain.ModEntry, installRoot string, progressFn ProgressFunc) (*InstallResult, error) {
	if entry.DownloadURL == "" {
		return nil, fmt.Errorf("%w: %s has no download URL", domain.ErrInvalidManifest, entry.DisplayName())
	}
	if len(entry.Mappings) == 0 {
		return nil, fmt.Errorf("%w: %s has no mappings", domain.ErrInvalidManifest, entry.DisplayName())
	}

	result := &InstallResult{Entry: entry}

	var archivePath, tempFile string
	if a.cache != nil && a.cache.Exists(entry.DownloadURL) {
		archivePath = a.cache.ArchivePath(entry.DownloadURL)
		result.Cached = true
		if info, statErr := os.Stat(archivePath); statErr == nil {
			result.Bytes = info.Size()
		}
		a.logger.Debug("using cached archive", "mod", entry.DisplayName(), "path", archivePath)
	} else {
		dl, err := a.downloader.Download(ctx, entry.DownloadURL, a.tempDir, progressFn)
		if err != nil {
			return nil, err
		}
		archivePath, tempFile = dl.Path, dl.Path
		result.Bytes = dl.Size
	}

	extractDir, err := os.MkdirTemp(a.tempDir, "bepinstall-extract-*")
	if err != nil {
		if tempFile != "" {
			os.Remove(tempFile)
		}
		return nil, fmt.Errorf("creating extraction dir: %w", err)
	}
	defer func() {
		if tempFile != "" {
			if rmErr := os.Remove(tempFile); rmErr != nil && !os.IsNotExist(rmErr) {
				a.logger.Warn("removing temp archive", "path", tempFile, "error", rmErr)
			}
		}
		if rmErr := os.RemoveAll(extractDir); rmErr != nil {
			a.logger.Warn("removing extraction dir", "path", extractDir, "error", rmErr)
		}
	}()

	err = a.extractor.Extract(archivePath, extractDir)
	if err != nil && result.Cached {
		// A cached archive that no longer extracts is evicted and fetched once more
		a.logger.Warn("cached archive is unreadable, downloading again", "mod", entry.DisplayName(), "error", err)
		if delErr := a.cache.Delete(entry.DownloadURL); delErr != nil {
			a.logger.Warn("evicting cached archive", "mod", entry.DisplayName(), "error", delErr)
		}
		if rmErr := os.RemoveAll(extractDir); rmErr != nil {
			return nil, fmt.Errorf("resetting extraction dir: %w", rmErr)
		}
		dl, dlErr := a.downloader.Download(ctx, entry.DownloadURL, a.tempDir, progressFn)
		if dlErr != nil {
			return nil, dlErr
		}
		archivePath, tempFile = dl.Path, dl.Path
		result.Cached = false
		result.Bytes = dl.Size
		err = a.extractor.Extract(archivePath, extractDir)
	}
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", entry.DisplayName(), err)
	}

	// The archive is known good once it extracts, so only then is it cached
	if a.cache != nil && tempFile != "" {
		if _, err := a.cache.Store(entry.DownloadURL, tempFile); err != nil {
			a.logger.Warn("caching archive", "mod", entry.DisplayName(), "error", err)
		}
	}

	for _, m := range entry.Mappings {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		placed, err := a.placer.Place(extractDir, installRoot, m)
		result.Files = append(result.Files, placed...)
		if err != nil {
			result.Replaced = a.record(entry, installRoot, result.Files)
			return result, fmt.Errorf("mapping %q -> %q: %w", m.From, m.To, err)
		}
	}

	result.Replaced = a.record(entry, installRoot, result.Files)
	return result, nil
}

// record writes placed files to the ledger and returns the ones that were
// recorded for a different mod. Ledger failures are logged, not returned.
func (a *ArchiveInstaller) record(entry domain.ModEntry, installRoot string, files []string) []string {
	if a.db == nil || len(files) == 0 {
		return nil
	}
	key := entry.Key()
	err := a.db.SaveInstalledMod(&domain.InstalledMod{
		InstallRoot: installRoot,
		Key:         key,
		Name:        entry.DisplayName(),
		Version:     entry.Version,
		DownloadURL: entry.DownloadURL,
		InstalledAt: time.Now(),
	})

	var replaced []string
	for _, f := range files {
		owner, ownerErr := a.db.GetFileOwner(installRoot, f)
		if ownerErr != nil {
			err = errors.Join(err, ownerErr)
		} else if owner != "" && owner != key {
			a.logger.Warn("file overwritten by another mod", "path", f, "previous", owner, "mod", entry.DisplayName())
			replaced = append(replaced, f)
		}
		err = errors.Join(err, a.db.SaveDeployedFile(installRoot, f, key))
	}
	if err != nil {
		a.logger.Warn("recording install in ledger", "mod", entry.DisplayName(), "error", err)
	}
	return replaced
}
