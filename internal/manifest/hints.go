package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bepinstall/internal/domain"
	"bepinstall/internal/source/nexusmods"
)

// resolveHints decodes a hint list and resolves each entry against its mod
// index. Entries missing their identifiers are skipped silently; a failed
// lookup becomes a warning and the rest of the list still resolves.
func (f *Fetcher) resolveHints(ctx context.Context, data []byte) (domain.InstallManifest, []string, error) {
	var hints []domain.ModHint
	if err := json.Unmarshal(data, &hints); err != nil {
		return domain.InstallManifest{}, nil, fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
	}
	if f.resolvers == nil {
		return domain.InstallManifest{}, nil, errors.New("hint manifests need a mod source registry")
	}

	var m domain.InstallManifest
	var warnings []string
	for _, hint := range hints {
		if err := ctx.Err(); err != nil {
			return domain.InstallManifest{}, nil, err
		}
		if !hintComplete(hint) {
			continue
		}

		resolver, err := f.resolvers.Get(hint.Source)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", hintLabel(hint), err))
			continue
		}

		entry, err := resolver.Resolve(ctx, hint)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", hintLabel(hint), err))
			continue
		}
		f.logger.Debug("resolved mod", "mod", hintLabel(hint), "version", entry.Version, "source", resolver.ID())
		m.Entries = append(m.Entries, *entry)
	}
	return m, warnings, nil
}

// hintComplete reports whether a hint names a package. Nexus Mods hints are
// looked up by ID; every other source needs a namespace and a name.
func hintComplete(h domain.ModHint) bool {
	if h.Source == nexusmods.SourceID {
		return h.ID != ""
	}
	return h.Namespace != "" && h.Name != ""
}

func hintLabel(h domain.ModHint) string {
	if h.Namespace != "" && h.Name != "" {
		return h.Namespace + "-" + h.Name
	}
	if h.Source != "" {
		return h.Source + ":" + h.ID
	}
	return h.ID
}
