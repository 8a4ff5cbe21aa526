// Package config provides configuration file parsing and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsRemote reports whether a manifest location is an HTTP(S) URL
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// ParseManifestPath validates a local manifest path and returns the cleaned absolute path.
// It returns an error if:
//   - The path is empty
//   - The file does not exist
//   - The path points to a directory instead of a file
//   - The file does not have a .json extension
func ParseManifestPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("manifest path cannot be empty")
	}

	path = strings.TrimPrefix(ExpandPath(path), "file://")
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving manifest path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("manifest file does not exist")
		}
		return "", err
	}

	if info.IsDir() {
		return "", errors.New("manifest path is a directory, not a file")
	}

	if strings.ToLower(filepath.Ext(abs)) != ".json" {
		return "", errors.New("manifest file must have .json extension")
	}

	return abs, nil
}
