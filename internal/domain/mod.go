package domain

import "time"

// WildcardSource maps the whole extracted archive root
const WildcardSource = "*"

// Mapping places one part of an extracted archive into the install root
type Mapping struct {
	From string // Path inside the archive; "*" or "" means the archive root
	To   string // Destination relative to the install root
}

// IsWildcard reports whether the mapping copies the entire archive root
func (m Mapping) IsWildcard() bool {
	return m.From == WildcardSource || m.From == ""
}

// ModEntry is one archive to install, normalized from any manifest schema
type ModEntry struct {
	ID          string // Source identifier: "namespace-name", a Nexus mod ID, or the download URL
	SourceID    string // "manifest", "thunderstore", "nexusmods"
	Name        string
	Version     string
	Description string
	DownloadURL string
	Mappings    []Mapping
	Loader      bool // True for the mod loader package, installed before everything else
}

// Key identifies the entry in the install ledger
func (e ModEntry) Key() string {
	return ModKey(e.SourceID, e.ID)
}

// DisplayName returns the best human-readable name for the entry
func (e ModEntry) DisplayName() string {
	if e.Name != "" {
		if e.Version != "" {
			return e.Name + " " + e.Version
		}
		return e.Name
	}
	return e.ID
}

// ModKey builds the ledger key for a mod
func ModKey(sourceID, modID string) string {
	return sourceID + ":" + modID
}

// InstallManifest is the ordered list of archives for one install run
type InstallManifest struct {
	Entries []ModEntry
}

// Loaders returns the loader entries in manifest order
func (m InstallManifest) Loaders() []ModEntry {
	var out []ModEntry
	for _, e := range m.Entries {
		if e.Loader {
			out = append(out, e)
		}
	}
	return out
}

// Mods returns the non-loader entries in manifest order
func (m InstallManifest) Mods() []ModEntry {
	var out []ModEntry
	for _, e := range m.Entries {
		if !e.Loader {
			out = append(out, e)
		}
	}
	return out
}

// ModHint is an entry of the hint-list manifest, resolved against a mod index
type ModHint struct {
	Source    string  `json:"source,omitempty"`
	Namespace string  `json:"namespace"`
	Name      string  `json:"name"`
	ID        string  `json:"id,omitempty"`
	FileID    string  `json:"file_id,omitempty"`
	From      *string `json:"from"`
	To        *string `json:"to"`
	Loader    bool    `json:"loader,omitempty"`
}

// InstalledMod is a ledger record of a mod placed into an install root
type InstalledMod struct {
	InstallRoot string
	Key         string
	Name        string
	Version     string
	DownloadURL string
	Files       int
	InstalledAt time.Time
}
