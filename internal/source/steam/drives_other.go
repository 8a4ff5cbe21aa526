//go:build !windows

package steam

func driveRoots() []string { return nil }
