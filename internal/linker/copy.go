package linker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bepinstall/internal/domain"
)

// Copier writes a byte-for-byte copy. Modes and symlinks are not carried over.
type Copier struct{}

func NewCopier() *Copier { return &Copier{} }

func (Copier) Method() domain.LinkMethod { return domain.LinkCopy }

func (Copier) Remove(dst string) error { return removeIfPresent(dst) }

// Place overwrites dst with the contents of src, creating parent directories
func (Copier) Place(src, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("preparing %s: %w", filepath.Dir(dst), err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("writing %s: %w", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}
