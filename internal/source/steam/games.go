package steam

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bepinstall/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed data/games.yaml
var defaultGamesFS embed.FS

const defaultGamesPath = "data/games.yaml"

// gamesYAML is the on-disk format: slug -> game entry
type gamesYAML map[string]struct {
	Name            string   `yaml:"name"`
	SteamAppID      string   `yaml:"steam_app_id"`
	NexusDomain     string   `yaml:"nexus_domain"`
	Folder          string   `yaml:"folder"`
	Executables     []string `yaml:"executables"`
	InitMarker      string   `yaml:"init_marker"`
	LoaderArtifacts []string `yaml:"loader_artifacts"`
}

// KnownGames is the set of games bepinstall can mod, keyed by slug
type KnownGames map[string]*domain.Game

// LoadKnownGames loads the embedded game list, then merges configDir/games.yaml
// over it if present. Entries in the override replace embedded ones by slug.
func LoadKnownGames(configDir string) (KnownGames, error) {
	data, err := defaultGamesFS.ReadFile(defaultGamesPath)
	if err != nil {
		return nil, fmt.Errorf("reading embedded games: %w", err)
	}
	games := make(KnownGames)
	if err := games.merge(data); err != nil {
		return nil, fmt.Errorf("parsing embedded games: %w", err)
	}

	if configDir == "" {
		return games, nil
	}

	overridePath := filepath.Join(configDir, "games.yaml")
	overrideData, err := os.ReadFile(overridePath)
	if err != nil {
		if os.IsNotExist(err) {
			return games, nil
		}
		return nil, fmt.Errorf("reading %s: %w", overridePath, err)
	}
	if err := games.merge(overrideData); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", overridePath, err)
	}
	return games, nil
}

func (k KnownGames) merge(data []byte) error {
	var y gamesYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return err
	}
	for slug, e := range y {
		folder := e.Folder
		if folder == "" {
			folder = e.Name
		}
		nexus := e.NexusDomain
		if nexus == "" {
			nexus = slug
		}
		k[slug] = &domain.Game{
			ID:              slug,
			Name:            e.Name,
			SteamAppID:      e.SteamAppID,
			NexusDomain:     nexus,
			FolderName:      folder,
			Executables:     e.Executables,
			InitMarker:      e.InitMarker,
			LoaderArtifacts: e.LoaderArtifacts,
		}
	}
	return nil
}

// Get returns the game for a slug
func (k KnownGames) Get(slug string) (*domain.Game, error) {
	g, ok := k[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownGame, slug)
	}
	return g, nil
}

// List returns the games sorted by slug
func (k KnownGames) List() []*domain.Game {
	out := make([]*domain.Game, 0, len(k))
	for _, g := range k {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
