package thunderstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"bepinstall/internal/domain"
	"bepinstall/internal/source"
)

// SourceID is the hint "source" value for Thunderstore
const SourceID = "thunderstore"

// loaderPrefix identifies BepInEx packs, which must install before any plugin
const loaderPrefix = "BepInExPack"

// Thunderstore resolves namespace/name hints via the Thunderstore package API
type Thunderstore struct {
	client *Client
}

// New creates a Thunderstore resolver
func New(httpClient *http.Client, baseURL string) *Thunderstore {
	return &Thunderstore{client: NewClient(httpClient, baseURL)}
}

// ID returns the source identifier
func (t *Thunderstore) ID() string {
	return SourceID
}

// Name returns the display name
func (t *Thunderstore) Name() string {
	return "Thunderstore"
}

// Resolve looks up the package's latest version
func (t *Thunderstore) Resolve(ctx context.Context, hint domain.ModHint) (*domain.ModEntry, error) {
	if hint.Namespace == "" || hint.Name == "" {
		return nil, fmt.Errorf("thunderstore hint needs namespace and name")
	}

	pkg, err := t.client.GetPackage(ctx, hint.Namespace, hint.Name)
	if err != nil {
		return nil, err
	}
	if pkg.Latest.DownloadURL == "" {
		return nil, fmt.Errorf("%w: %s-%s has no download", domain.ErrModNotFound, hint.Namespace, hint.Name)
	}

	fullName := pkg.FullName
	if fullName == "" {
		fullName = hint.Namespace + "-" + hint.Name
	}

	return &domain.ModEntry{
		ID:          fullName,
		SourceID:    SourceID,
		Name:        pkg.Name,
		Version:     pkg.Latest.VersionNumber,
		Description: pkg.Latest.Description,
		DownloadURL: pkg.Latest.DownloadURL,
		Mappings:    []domain.Mapping{source.HintMapping(hint, fullName)},
		Loader:      hint.Loader || strings.HasPrefix(pkg.Name, loaderPrefix),
	}, nil
}
