package linker

import (
	"fmt"
	"os"
	"path/filepath"

	"bepinstall/internal/domain"
)

// HardLinker shares the inode of the extracted file. When the link cannot be
// made (another device, or no hardlink support) the file is copied.
type HardLinker struct {
	copier Copier
}

func NewHardLinker() *HardLinker { return &HardLinker{} }

func (*HardLinker) Method() domain.LinkMethod { return domain.LinkHardlink }

func (*HardLinker) Remove(dst string) error { return removeIfPresent(dst) }

func (h *HardLinker) Place(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("preparing %s: %w", filepath.Dir(dst), err)
	}
	// os.Link refuses to replace an existing file
	if err := removeIfPresent(dst); err != nil {
		return err
	}
	if os.Link(src, dst) == nil {
		return nil
	}
	return h.copier.Place(src, dst)
}
