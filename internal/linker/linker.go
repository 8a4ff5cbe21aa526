// Package linker puts extracted archive files into the game directory.
package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bepinstall/internal/domain"
)

// Linker writes one file into place and takes it away again
type Linker interface {
	Place(src, dst string) error
	Remove(dst string) error
	Method() domain.LinkMethod
}

// New returns the linker for method; anything unknown copies
func New(method domain.LinkMethod) Linker {
	if method == domain.LinkHardlink {
		return NewHardLinker()
	}
	return NewCopier()
}

// removeIfPresent deletes dst; a missing file is fine
func removeIfPresent(dst string) error {
	err := os.Remove(dst)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("removing %s: %w", dst, err)
}

// PruneEmptyDirs removes the directories above path that are left empty,
// stopping below root.
func PruneEmptyDirs(path, root string) {
	root = filepath.Clean(root)
	for dir := filepath.Dir(filepath.Clean(path)); len(dir) > len(root) && dir != root; dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			// Not empty, or already gone
			return
		}
	}
}
