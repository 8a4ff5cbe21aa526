package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Cache keeps downloaded archives keyed by their download URL
type Cache struct {
	basePath string
}

// New creates a new archive cache rooted at basePath
func New(basePath string) *Cache {
	return &Cache{basePath: basePath}
}

// Key returns the cache key for a download URL
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// ArchivePath returns where the archive for url is stored
func (c *Cache) ArchivePath(url string) string {
	return filepath.Join(c.basePath, Key(url)+".zip")
}

// Exists checks if the archive for url is cached
func (c *Cache) Exists(url string) bool {
	info, err := os.Stat(c.ArchivePath(url))
	return err == nil && info.Mode().IsRegular()
}

// Store copies the file at src into the cache and returns the cached path.
// The copy is written to a temp file first so a partial write never looks cached.
func (c *Cache) Store(url, src string) (string, error) {
	if err := os.MkdirAll(c.basePath, 0755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(c.basePath, "partial-*")
	if err != nil {
		return "", fmt.Errorf("creating cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing cached archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing cached archive: %w", err)
	}

	dst := c.ArchivePath(url)
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("moving cached archive: %w", err)
	}

	return dst, nil
}

// Delete removes the cached archive for url
func (c *Cache) Delete(url string) error {
	if err := os.Remove(c.ArchivePath(url)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cached archive: %w", err)
	}
	return nil
}

// Clear removes every cached archive
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.basePath); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Size returns the total size of cached archives
func (c *Cache) Size() (int64, int, error) {
	var totalSize int64
	var count int
	err := filepath.WalkDir(c.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == c.basePath {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".zip") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalSize += info.Size()
		count++
		return nil
	})

	if err != nil {
		return 0, 0, fmt.Errorf("calculating cache size: %w", err)
	}

	return totalSize, count, nil
}
