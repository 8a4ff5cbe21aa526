package core

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extractor unpacks ZIP archives
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks every entry of the ZIP at archivePath into destDir.
// The archive is identified by content, not by extension.
func (e *Extractor) Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("preparing %s: %w", destDir, err)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		target, err := sanitizePath(destDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("unpacking %s: %w", entry.Name, err)
			}
			continue
		}
		if err := unpackFile(entry, target); err != nil {
			return fmt.Errorf("unpacking %s: %w", entry.Name, err)
		}
	}
	return nil
}

// unpackFile writes one entry as a regular 0644 file, whatever mode or
// symlink flag the archive recorded
func unpackFile(entry *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
	}()

	// Reading to EOF also verifies the entry's CRC-32
	_, err = io.Copy(dst, src)
	return err
}

// sanitizePath joins an archive entry name onto destDir and rejects names that
// would land outside it, such as "../../etc/passwd" or absolute paths.
func sanitizePath(destDir, name string) (string, error) {
	// ZIP names always use forward slashes, but some Windows tools write backslashes
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}

	destPath := filepath.Join(destDir, filepath.FromSlash(name))
	if !within(destDir, destPath) {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}
	return destPath, nil
}

// within reports whether path is root or below it
func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
