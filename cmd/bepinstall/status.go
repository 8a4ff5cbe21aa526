package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"bepinstall/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked mods and recent runs",
	Long: `Show the game directory, the mods recorded in the install ledger, the recent
install and uninstall runs, and the archive cache size.

Examples:
  bepinstall status
  bepinstall status --json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

const statusRunLimit = 5

type statusJSON struct {
	Game        string           `json:"game"`
	InstallRoot string           `json:"install_root,omitempty"`
	Loader      bool             `json:"loader_installed"`
	Mods        []modStatusJSON  `json:"mods"`
	Runs        []runStatusJSON  `json:"runs"`
	Cache       *cacheStatusJSON `json:"cache,omitempty"`
}

type modStatusJSON struct {
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Files       int       `json:"files"`
	InstalledAt time.Time `json:"installed_at"`
}

type runStatusJSON struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	State      string    `json:"state"`
	Message    string    `json:"message,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

type cacheStatusJSON struct {
	Archives int   `json:"archives"`
	Bytes    int64 `json:"bytes"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	game, err := service.Game()
	if err != nil {
		return err
	}

	status := statusJSON{Game: game.Name}
	if root, err := service.Locate(); err == nil {
		status.InstallRoot = root
		status.Loader = loaderInstalled(root)

		mods, err := service.InstalledMods(root)
		if err != nil {
			return fmt.Errorf("reading ledger: %w", err)
		}
		for _, m := range mods {
			status.Mods = append(status.Mods, modStatusJSON{Name: m.Name, Key: m.Key, Files: m.Files, InstalledAt: m.InstalledAt})
		}
	}

	runs, err := service.RecentRuns(statusRunLimit)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}
	for _, r := range runs {
		status.Runs = append(status.Runs, runStatusJSON{
			ID: r.ID, Kind: string(r.Kind), State: r.State.String(), Message: r.Message,
			StartedAt: r.StartedAt, FinishedAt: r.FinishedAt,
		})
	}

	if c := service.Cache(); c != nil {
		size, count, err := c.Size()
		if err == nil {
			status.Cache = &cacheStatusJSON{Archives: count, Bytes: size}
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(status)
	}

	fmt.Fprintf(out, "Game: %s\n", colorBold(status.Game))
	if status.InstallRoot == "" {
		fmt.Fprintf(out, "Path: %s\n", colorYellow("not found"))
	} else {
		fmt.Fprintf(out, "Path: %s\n", status.InstallRoot)
		loader := colorYellow("not installed")
		if status.Loader {
			loader = colorGreen("installed")
		}
		fmt.Fprintf(out, "BepInEx: %s\n", loader)
	}

	fmt.Fprintln(out)
	if len(status.Mods) == 0 {
		fmt.Fprintln(out, "No tracked mods.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MOD\tFILES\tINSTALLED")
		for _, m := range status.Mods {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, humanize.Comma(int64(m.Files)), humanize.Time(m.InstalledAt))
		}
		w.Flush()
	}

	if len(status.Runs) > 0 {
		fmt.Fprintln(out, "\nRecent runs:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, r := range runs {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", r.Kind, stateLabel(r.State), humanize.Time(r.StartedAt), r.Message)
		}
		w.Flush()
	}

	if status.Cache != nil {
		fmt.Fprintf(out, "\nCache: %d archive(s), %s\n", status.Cache.Archives, humanize.Bytes(uint64(status.Cache.Bytes)))
	}
	return nil
}

func stateLabel(s domain.RunState) string {
	switch s {
	case domain.StateSucceeded:
		return colorGreen(s.String())
	case domain.StatePartial:
		return colorYellow(s.String())
	case domain.StateFailed:
		return colorRed(s.String())
	default:
		return s.String()
	}
}

// loaderInstalled reports whether the BepInEx directory exists in root
func loaderInstalled(root string) bool {
	info, err := os.Stat(filepath.Join(root, "BepInEx"))
	return err == nil && info.IsDir()
}
