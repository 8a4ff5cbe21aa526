package source

import (
	"context"
	"path"

	"bepinstall/internal/domain"
)

// Resolver turns a manifest hint into a downloadable mod entry by asking a mod index
type Resolver interface {
	// ID is the value of a hint's "source" field that selects this resolver
	ID() string
	Name() string

	// Resolve looks the hinted package up and returns an entry ready to install.
	// Returns an error wrapping domain.ErrModNotFound when the index has no such package.
	Resolve(ctx context.Context, hint domain.ModHint) (*domain.ModEntry, error)
}

// PluginsDir is where BepInEx loads plugins from, relative to the game root
const PluginsDir = "BepInEx/plugins"

// HintMapping builds the placement for a resolved hint.
// A missing "from" copies the whole archive; a missing "to" installs into
// the plugin directory under the package's full name.
func HintMapping(hint domain.ModHint, fullName string) domain.Mapping {
	m := domain.Mapping{From: domain.WildcardSource}
	if hint.From != nil && *hint.From != "" {
		m.From = *hint.From
	}
	if hint.To != nil {
		m.To = *hint.To
	} else {
		m.To = path.Join(PluginsDir, fullName)
	}
	return m
}
