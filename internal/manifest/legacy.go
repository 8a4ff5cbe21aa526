package manifest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"bepinstall/internal/domain"
)

// archiveEntry is one downloadable archive in the legacy and settings schemas
type archiveEntry struct {
	URL     string     `json:"url"`
	Mapping [][]string `json:"mapping"`
}

// settingsFile is the {"bepinex": ..., "mods": [...]} schema
type settingsFile struct {
	BepInEx *struct {
		URL     string   `json:"url"`
		Mapping []string `json:"mapping"`
	} `json:"bepinex"`
	Mods []archiveEntry `json:"mods"`
}

// parseLegacy decodes [{url, mapping: [[from, to], ...]}]. The first entry is
// the loader package.
func parseLegacy(data []byte) (domain.InstallManifest, error) {
	var entries []archiveEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return domain.InstallManifest{}, fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
	}

	var m domain.InstallManifest
	for i, e := range entries {
		entry, err := toEntry(e.URL, e.Mapping)
		if err != nil {
			return domain.InstallManifest{}, fmt.Errorf("entry %d: %w", i, err)
		}
		entry.Loader = i == 0
		m.Entries = append(m.Entries, entry)
	}
	return m, nil
}

// parseSettings decodes the settings object. Its bepinex block has a single
// [from, to] mapping and is always the loader.
func parseSettings(data []byte) (domain.InstallManifest, error) {
	var s settingsFile
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.InstallManifest{}, fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
	}
	if s.BepInEx == nil {
		return domain.InstallManifest{}, fmt.Errorf("%w: missing \"bepinex\"", domain.ErrInvalidManifest)
	}

	var m domain.InstallManifest
	loader, err := toEntry(s.BepInEx.URL, [][]string{s.BepInEx.Mapping})
	if err != nil {
		return domain.InstallManifest{}, fmt.Errorf("bepinex: %w", err)
	}
	loader.Loader = true
	m.Entries = append(m.Entries, loader)

	for i, e := range s.Mods {
		entry, err := toEntry(e.URL, e.Mapping)
		if err != nil {
			return domain.InstallManifest{}, fmt.Errorf("mod %d: %w", i, err)
		}
		m.Entries = append(m.Entries, entry)
	}
	return m, nil
}

func toEntry(rawURL string, pairs [][]string) (domain.ModEntry, error) {
	if rawURL == "" {
		return domain.ModEntry{}, fmt.Errorf("%w: missing url", domain.ErrInvalidManifest)
	}

	mappings := make([]domain.Mapping, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			return domain.ModEntry{}, fmt.Errorf("%w: mapping needs [from, to], got %d values", domain.ErrInvalidManifest, len(p))
		}
		mappings = append(mappings, domain.Mapping{From: p[0], To: p[1]})
	}

	return domain.ModEntry{
		ID:          rawURL,
		SourceID:    SourceID,
		Name:        nameFromURL(rawURL),
		DownloadURL: rawURL,
		Mappings:    mappings,
	}, nil
}

// nameFromURL returns the last path segment without a .zip suffix
func nameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" {
		return rawURL
	}
	return strings.TrimSuffix(base, ".zip")
}
