package steam

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bepinstall/internal/domain"
)

// Phase names reported in logs
const (
	PhaseOverride  = "override"
	PhaseWellKnown = "well-known"
	PhaseRegistry  = "registry"
	PhaseDriveScan = "drive-scan"
)

// Locator finds a game's install directory across Steam roots and libraries
type Locator struct {
	logger    *slog.Logger
	steamPath string

	// Root providers per phase, replaceable in tests
	wellKnown func() []string
	registry  func() []string
	drives    func() []string
	scanDepth int
}

// Option configures a Locator
type Option func(*Locator)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) { l.logger = logger }
}

// WithSteamPath probes an explicit Steam root before the well-known ones
func WithSteamPath(path string) Option {
	return func(l *Locator) { l.steamPath = path }
}

// WithRoots replaces the well-known root list
func WithRoots(roots ...string) Option {
	return func(l *Locator) { l.wellKnown = func() []string { return roots } }
}

// WithRegistry replaces the registry lookup
func WithRegistry(fn func() []string) Option {
	return func(l *Locator) { l.registry = fn }
}

// WithDrives replaces the list of drive roots to scan
func WithDrives(fn func() []string) Option {
	return func(l *Locator) { l.drives = fn }
}

// WithScanDepth sets how deep each drive is scanned
func WithScanDepth(depth int) Option {
	return func(l *Locator) { l.scanDepth = depth }
}

// NewLocator creates a locator using the platform's discovery sources
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		logger:    slog.Default(),
		wellKnown: wellKnownRoots,
		registry:  registryRoots,
		drives:    driveRoots,
		scanDepth: DefaultScanDepth,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type phase struct {
	name  string
	roots func() []string
}

func (l *Locator) phases() []phase {
	return []phase{
		{PhaseOverride, func() []string {
			if l.steamPath == "" {
				return nil
			}
			return []string{l.steamPath}
		}},
		{PhaseWellKnown, l.wellKnown},
		{PhaseRegistry, l.registry},
		{PhaseDriveScan, l.scanDrives},
	}
}

// FindGame returns <library>/steamapps/common/<folderName> for the first
// library that has it, or domain.ErrGameNotFound.
func (l *Locator) FindGame(folderName string) (string, error) {
	return l.Find(&domain.Game{Name: folderName, FolderName: folderName})
}

// Find locates the install directory of game. Each discovery phase runs only
// if the earlier ones found nothing. Within a library the appmanifest install
// dir is tried before the folder name when the game has a Steam app ID.
func (l *Locator) Find(game *domain.Game) (string, error) {
	seen := make(map[string]bool)
	for _, ph := range l.phases() {
		for _, root := range ph.roots() {
			if !isDir(filepath.Join(root, "steamapps")) {
				l.logger.Debug("skipping steam root", "phase", ph.name, "root", root)
				continue
			}
			for _, lib := range libraries(root, seen) {
				if dir, ok := probeLibrary(lib, game); ok {
					l.logger.Debug("found game", "phase", ph.name, "library", lib, "dir", dir)
					return dir, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrGameNotFound, game.Name)
}

// Libraries returns every Steam library visible from the well-known, override
// and registry roots. The drive scan is skipped.
func (l *Locator) Libraries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ph := range l.phases()[:3] {
		for _, root := range ph.roots() {
			if !isDir(filepath.Join(root, "steamapps")) {
				continue
			}
			out = append(out, libraries(root, seen)...)
		}
	}
	return out
}

func probeLibrary(lib string, game *domain.Game) (string, bool) {
	common := filepath.Join(lib, "steamapps", "common")

	if game.SteamAppID != "" {
		if dir := installDirFromManifest(lib, game.SteamAppID); dir != "" {
			candidate := filepath.Join(common, dir)
			if isDir(candidate) {
				return absPath(candidate), true
			}
		}
	}

	if game.FolderName == "" {
		return "", false
	}
	candidate := filepath.Join(common, game.FolderName)
	if isDir(candidate) {
		return absPath(candidate), true
	}
	return "", false
}

func installDirFromManifest(lib, appID string) string {
	f, err := os.Open(filepath.Join(lib, "steamapps", "appmanifest_"+appID+".acf"))
	if err != nil {
		return ""
	}
	defer f.Close()

	m, err := ParseAppManifest(f)
	if err != nil || m.AppID != appID {
		return ""
	}
	return m.InstallDir
}

// scanDrives yields the first Steam root found on each drive, in drive order,
// so a drive whose root lacks the game does not hide the drives after it
func (l *Locator) scanDrives() []string {
	var roots []string
	for _, drive := range l.drives() {
		if root, ok := scanForSteamRoot(drive, l.scanDepth); ok {
			roots = append(roots, root)
		}
	}
	return roots
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
