//go:build windows

package steam

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

var steamRegistryKeys = []string{
	`SOFTWARE\WOW6432Node\Valve\Steam`,
	`SOFTWARE\Valve\Steam`,
}

// registryRoots returns Steam InstallPath values from HKLM that have a steamapps dir
func registryRoots() []string {
	var roots []string
	for _, keyPath := range steamRegistryKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		val, _, err := key.GetStringValue("InstallPath")
		key.Close()
		if err != nil || val == "" {
			continue
		}
		if info, err := os.Stat(filepath.Join(val, "steamapps")); err == nil && info.IsDir() {
			roots = append(roots, val)
		}
	}
	return roots
}
