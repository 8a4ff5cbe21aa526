package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"bepinstall/internal/domain"

	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Fetch and show the install manifest",
	Long: `Fetch the manifest without installing anything and list what an install would do.

Hint entries are resolved against the mod index, so this also shows which
mods could not be found.

Examples:
  bepinstall manifest
  bepinstall manifest --manifest https://example.com/mods.json --json`,
	RunE: runManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}

type manifestEntryJSON struct {
	Name     string      `json:"name"`
	Source   string      `json:"source"`
	URL      string      `json:"url"`
	Loader   bool        `json:"loader,omitempty"`
	Mappings [][2]string `json:"mapping"`
}

func runManifest(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	res, err := service.FetchManifest(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if jsonOutput {
		entries := make([]manifestEntryJSON, 0, len(res.Manifest.Entries))
		for _, e := range res.Manifest.Entries {
			entries = append(entries, toManifestEntryJSON(e))
		}
		return json.NewEncoder(out).Encode(struct {
			Format   string              `json:"format"`
			Entries  []manifestEntryJSON `json:"entries"`
			Warnings []string            `json:"warnings,omitempty"`
		}{Format: res.Format, Entries: entries, Warnings: res.Warnings})
	}

	fmt.Fprintf(out, "Manifest: %s (%s format)\n\n", service.Config().ManifestURL, res.Format)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tMAPPINGS")
	for _, e := range res.Manifest.Entries {
		name := e.DisplayName()
		if e.Loader {
			name = colorBold(name) + " (loader)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, e.SourceID, formatMappings(e.Mappings))
		if verbose {
			fmt.Fprintf(w, "\t%s\t\n", e.DownloadURL)
		}
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d entries\n", len(res.Manifest.Entries))
	for _, warning := range res.Warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", colorYellow("warning:"), warning)
	}
	return nil
}

func toManifestEntryJSON(e domain.ModEntry) manifestEntryJSON {
	out := manifestEntryJSON{
		Name:     e.DisplayName(),
		Source:   e.SourceID,
		URL:      e.DownloadURL,
		Loader:   e.Loader,
		Mappings: make([][2]string, 0, len(e.Mappings)),
	}
	for _, m := range e.Mappings {
		out.Mappings = append(out.Mappings, [2]string{m.From, m.To})
	}
	return out
}

// formatMappings renders mappings as "from -> to" pairs; an empty target is the game root
func formatMappings(mappings []domain.Mapping) string {
	parts := make([]string, 0, len(mappings))
	for _, m := range mappings {
		to := m.To
		if to == "" {
			to = "."
		}
		parts = append(parts, fmt.Sprintf("%s -> %s", m.From, to))
	}
	return strings.Join(parts, ", ")
}
