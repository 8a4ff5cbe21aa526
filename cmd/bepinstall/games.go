package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games bepinstall knows",
	Long: `List the built-in games plus any defined in <config>/games.yaml.

Select one with --game or the "game" setting in config.yaml.`,
	RunE: runGames,
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}

type gameJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SteamAppID  string   `json:"steam_app_id,omitempty"`
	FolderName  string   `json:"folder"`
	Executables []string `json:"executables,omitempty"`
	Selected    bool     `json:"selected"`
}

func runGames(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	selected := service.Config().Game
	games := service.ListGames()
	out := cmd.OutOrStdout()

	if jsonOutput {
		list := make([]gameJSON, 0, len(games))
		for _, g := range games {
			list = append(list, gameJSON{
				ID: g.ID, Name: g.Name, SteamAppID: g.SteamAppID, FolderName: g.FolderName,
				Executables: g.Executables, Selected: g.ID == selected,
			})
		}
		return json.NewEncoder(out).Encode(list)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tAPP ID\tFOLDER")
	for _, g := range games {
		marker := " "
		if g.ID == selected {
			marker = colorGreen("*")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, g.ID, g.Name, g.SteamAppID, g.FolderName)
		if verbose && len(g.Executables) > 0 {
			fmt.Fprintf(w, "\t\texecutables: %s\t\t\n", strings.Join(g.Executables, ", "))
		}
	}
	return w.Flush()
}
