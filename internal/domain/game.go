package domain

// LinkMethod determines how extracted files are placed into the game directory
type LinkMethod int

const (
	LinkCopy     LinkMethod = iota // Default: byte-for-byte copy
	LinkHardlink                   // Hardlink, falling back to copy across devices
)

func (m LinkMethod) String() string {
	switch m {
	case LinkCopy:
		return "copy"
	case LinkHardlink:
		return "hardlink"
	default:
		return "unknown"
	}
}

// ParseLinkMethod converts a string to LinkMethod
func ParseLinkMethod(s string) LinkMethod {
	switch s {
	case "hardlink":
		return LinkHardlink
	default:
		return LinkCopy
	}
}

// Game describes a Steam game that bepinstall can mod
type Game struct {
	ID              string   // Slug, e.g. "valheim"
	Name            string   // Display name
	SteamAppID      string   // Steam App ID, used to read appmanifest_<id>.acf
	NexusDomain     string   // Nexus Mods game domain, e.g. "valheim"
	FolderName      string   // Folder under steamapps/common
	Executables     []string // Candidate executables relative to the install root, first existing wins
	InitMarker      string   // File the loader creates on first launch, relative to the install root
	LoaderArtifacts []string // Paths the loader package creates, relative to the install root
}

// DefaultLoaderArtifacts is the set of files and directories BepInEx creates in a game directory
var DefaultLoaderArtifacts = []string{
	"BepInEx",
	"doorstop_libs",
	"changelog.txt",
	"doorstop_config.ini",
	".doorstop_version",
	"start_game_bepinex.sh",
	"start_server_bepinex.sh",
	"winhttp.dll",
}

// Artifacts returns the loader allowlist for the game, or the BepInEx default
func (g *Game) Artifacts() []string {
	if g == nil || len(g.LoaderArtifacts) == 0 {
		return DefaultLoaderArtifacts
	}
	return g.LoaderArtifacts
}
