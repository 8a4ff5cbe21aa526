package steam

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseLibraryFolders extracts "path" values from libraryfolders.vdf.
//
// The file is read line by line rather than as a VDF tree so a damaged file
// still yields its readable entries: any line that is not a well-formed
// "path" "<value>" pair is skipped. Escaped backslashes are decoded.
func ParseLibraryFolders(r io.Reader) []string {
	var paths []string
	br := bufio.NewReader(r)
	for {
		// No line length limit: an oversized junk line is just another malformed line
		line, err := br.ReadString('\n')
		if p, ok := parsePathLine(line); ok {
			paths = append(paths, p)
		}
		if err != nil {
			return paths
		}
	}
}

func parsePathLine(line string) (string, bool) {
	fields := quotedFields(strings.TrimSpace(line))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "path") || fields[1] == "" {
		return "", false
	}
	return strings.ReplaceAll(fields[1], `\\`, `\`), true
}

// quotedFields returns the quoted strings on a line, or nil if a quote is unbalanced
// or unquoted text appears between them.
func quotedFields(line string) []string {
	var fields []string
	for len(line) > 0 {
		if line[0] != '"' {
			return nil
		}
		end := closingQuote(line)
		if end < 0 {
			return nil
		}
		fields = append(fields, line[1:end])
		line = strings.TrimSpace(line[end+1:])
	}
	return fields
}

// closingQuote finds the quote ending the string opened at s[0], skipping escapes
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// libraries returns the Steam libraries of a root: the root itself, then every
// library listed in steamapps/libraryfolders.vdf that exists and has a steamapps
// directory. Libraries already in seen are dropped.
func libraries(root string, seen map[string]bool) []string {
	var out []string
	add := func(p string) {
		key := libraryKey(p)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}

	add(root)

	f, err := os.Open(filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		return out
	}
	defer f.Close()

	for _, p := range ParseLibraryFolders(f) {
		if !isDir(filepath.Join(p, "steamapps")) {
			continue
		}
		add(p)
	}
	return out
}

func libraryKey(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
