//go:build windows

package steam

import (
	"os"
	"path/filepath"
)

func wellKnownRoots() []string {
	x86 := os.Getenv("ProgramFiles(x86)")
	if x86 == "" {
		x86 = `C:\Program Files (x86)`
	}
	pf := os.Getenv("ProgramFiles")
	if pf == "" {
		pf = `C:\Program Files`
	}
	return []string{
		filepath.Join(x86, "Steam"),
		filepath.Join(pf, "Steam"),
	}
}
