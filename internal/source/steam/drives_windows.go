//go:build windows

package steam

import "golang.org/x/sys/windows"

// driveRoots returns the root of every logical drive, e.g. `C:\`
func driveRoots() []string {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil
	}
	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			roots = append(roots, string(rune('A'+i))+`:\`)
		}
	}
	return roots
}
