package steam

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultScanDepth bounds the drive scan
const DefaultScanDepth = 3

// scanForSteamRoot walks base breadth-first, at most maxDepth levels deep, and
// returns the first directory that contains a steamapps directory.
// Unreadable directories are skipped.
func scanForSteamRoot(base string, maxDepth int) (string, bool) {
	level := []string{base}
	for depth := 0; depth <= maxDepth && len(level) > 0; depth++ {
		var next []string
		for _, dir := range level {
			if isDir(filepath.Join(dir, "steamapps")) {
				return dir, true
			}
			if depth == maxDepth {
				continue
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if !e.IsDir() || skipScanDir(e.Name()) {
					continue
				}
				next = append(next, filepath.Join(dir, e.Name()))
			}
		}
		level = next
	}
	return "", false
}

// skipScanDir skips hidden and system directories that never hold a Steam root
func skipScanDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "$") {
		return true
	}
	switch strings.ToLower(name) {
	case "windows", "system volume information", "programdata", "recovery":
		return true
	}
	return false
}
