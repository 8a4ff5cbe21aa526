//go:build !windows

package steam

func registryRoots() []string { return nil }
