package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bepinstall/internal/domain"
	"bepinstall/internal/linker"
)

// Placer copies mapped parts of an extracted archive into an install root
type Placer struct {
	linker linker.Linker
}

// NewPlacer creates a placer that deploys files with the given linker
func NewPlacer(l linker.Linker) *Placer {
	if l == nil {
		l = linker.NewCopier()
	}
	return &Placer{linker: l}
}

// Place applies one mapping and returns the placed files relative to
// installRoot, slash-separated.
//
// The destination installRoot/To is created first. A wildcard source copies
// the whole extracted tree, a directory copies its contents and a file is
// copied into the destination under its own name.
func (p *Placer) Place(extractedRoot, installRoot string, m domain.Mapping) ([]string, error) {
	dest, err := ResolveInside(installRoot, m.To)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}

	src := extractedRoot
	if !m.IsWildcard() {
		src, err = ResolveInside(extractedRoot, m.From)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrMappingSource, m.From)
		}
	}

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMappingSource, m.From)
		}
		return nil, fmt.Errorf("reading mapping source: %w", err)
	}

	if !info.IsDir() {
		target := filepath.Join(dest, filepath.Base(src))
		if err := p.linker.Place(src, target); err != nil {
			return nil, fmt.Errorf("placing %s: %w", filepath.Base(src), err)
		}
		return []string{relSlash(installRoot, target)}, nil
	}

	var placed []string
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := p.linker.Place(path, target); err != nil {
			return fmt.Errorf("placing %s: %w", rel, err)
		}
		placed = append(placed, relSlash(installRoot, target))
		return nil
	})
	if err != nil {
		return placed, err
	}
	return placed, nil
}

// ResolveInside joins a slash-separated relative path onto root and fails with
// domain.ErrPathOutsideRoot if the result leaves root. "" resolves to root.
func ResolveInside(root, rel string) (string, error) {
	native := filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" || strings.HasPrefix(native, string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrPathOutsideRoot, rel)
	}
	joined := filepath.Join(root, native)
	if !within(root, joined) {
		return "", fmt.Errorf("%w: %s", domain.ErrPathOutsideRoot, rel)
	}
	return joined, nil
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
