package steam

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// VDFMap is a parsed Valve KeyValues block: values are strings or nested VDFMaps
type VDFMap map[string]interface{}

// String returns the string value for key, or "" if it is missing or a block
func (m VDFMap) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Block returns the nested block for key, or nil
func (m VDFMap) Block(key string) VDFMap {
	b, _ := m[key].(VDFMap)
	return b
}

// vdfParser walks a token stream produced by scanVDFTokens
type vdfParser struct {
	tokens []string
	pos    int
}

// ParseVDF reads Valve KeyValues text (libraryfolders.vdf, appmanifest_*.acf)
func ParseVDF(r io.Reader) (VDFMap, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanVDFTokens)

	p := &vdfParser{}
	for scanner.Scan() {
		p.tokens = append(p.tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vdf: %w", err)
	}

	return p.block(true)
}

func (p *vdfParser) next() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

// block reads pairs until "}" (or end of input at the top level)
func (p *vdfParser) block(top bool) (VDFMap, error) {
	result := make(VDFMap)
	for {
		key, ok := p.next()
		if !ok {
			if top {
				return result, nil
			}
			return nil, fmt.Errorf("vdf: unexpected end of input, missing }")
		}
		if key == "}" {
			if top {
				return nil, fmt.Errorf("vdf: unexpected }")
			}
			return result, nil
		}

		value, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("vdf: unexpected end after key %q", key)
		}
		if value == "{" {
			inner, err := p.block(false)
			if err != nil {
				return nil, err
			}
			result[key] = inner
			continue
		}
		result[key] = value
	}
}

// scanVDFTokens splits input into quoted strings, bare words and braces.
// Backslash escapes inside quotes are decoded.
func scanVDFTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && unicode.IsSpace(rune(data[start])) {
		start++
	}
	// "//" comments run to end of line
	if start+1 < len(data) && data[start] == '/' && data[start+1] == '/' {
		if i := strings.IndexByte(string(data[start:]), '\n'); i >= 0 {
			return start + i + 1, nil, nil
		}
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	if start >= len(data) {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	data = data[start:]

	switch data[0] {
	case '"':
		var sb strings.Builder
		for i := 1; i < len(data); i++ {
			switch {
			case data[i] == '\\' && i+1 < len(data):
				i++
				sb.WriteByte(unescapeVDF(data[i]))
			case data[i] == '"':
				return start + i + 1, []byte(sb.String()), nil
			default:
				sb.WriteByte(data[i])
			}
		}
		if atEOF {
			return 0, nil, fmt.Errorf("vdf: unclosed quote")
		}
		return 0, nil, nil
	case '{', '}':
		return start + 1, data[:1], nil
	}

	i := 0
	for i < len(data) && !unicode.IsSpace(rune(data[i])) && data[i] != '"' && data[i] != '{' && data[i] != '}' {
		i++
	}
	if i == len(data) && !atEOF {
		return 0, nil, nil
	}
	return start + i, data[:i], nil
}

func unescapeVDF(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return c
	}
}

// AppManifest holds the fields bepinstall reads from appmanifest_<id>.acf
type AppManifest struct {
	AppID      string
	Name       string
	InstallDir string
}

// ParseAppManifest parses the contents of an appmanifest_*.acf file
func ParseAppManifest(r io.Reader) (AppManifest, error) {
	root, err := ParseVDF(r)
	if err != nil {
		return AppManifest{}, err
	}
	state := root.Block("AppState")
	if state == nil {
		return AppManifest{}, fmt.Errorf("vdf: missing AppState")
	}
	return AppManifest{
		AppID:      state.String("appid"),
		Name:       state.String("name"),
		InstallDir: state.String("installdir"),
	}, nil
}
