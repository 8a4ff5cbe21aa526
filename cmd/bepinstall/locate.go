package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Print the game's install directory",
	Long: `Search the Steam libraries for the game and print its install directory.

The install_path setting skips the search. With --verbose the Steam libraries
that were searched are listed as well.

Examples:
  bepinstall locate
  bepinstall locate -g valheim-server -v`,
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	out := cmd.OutOrStdout()
	root, err := service.Locate()
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(out).Encode(struct {
			Path      string   `json:"path"`
			Libraries []string `json:"libraries,omitempty"`
		}{Path: root, Libraries: service.Libraries()})
	}

	fmt.Fprintln(out, root)
	if verbose {
		fmt.Fprintln(out, "\nSteam libraries:")
		for _, lib := range service.Libraries() {
			fmt.Fprintf(out, "  %s\n", lib)
		}
	}
	return nil
}
