package main

import (
	"fmt"

	"bepinstall/internal/domain"

	"github.com/spf13/cobra"
)

var (
	uninstallTracked bool
	uninstallMod     string
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove BepInEx from the game directory",
	Long: `Remove the files and directories BepInEx creates in the game directory.

Mod files placed outside those paths are left alone unless --tracked is given,
which also removes every file recorded at install time. --mod removes only the
files recorded for one mod and leaves BepInEx in place; "bepinstall status --json"
lists the mod keys.

Running uninstall twice is harmless, and a game that cannot be found is not an error.

Examples:
  bepinstall uninstall
  bepinstall uninstall --tracked
  bepinstall uninstall --mod thunderstore:ValheimModding-Jotunn`,
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallTracked, "tracked", false, "also remove every file recorded at install time")
	uninstallCmd.Flags().StringVar(&uninstallMod, "mod", "", "remove only the files recorded for this mod key")
	uninstallCmd.MarkFlagsMutuallyExclusive("tracked", "mod")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	var events <-chan domain.Event
	if uninstallMod != "" {
		events, err = service.StartRemoveMod(cmd.Context(), uninstallMod)
	} else {
		events, err = service.StartUninstall(cmd.Context(), uninstallTracked)
	}
	if err != nil {
		return err
	}
	_, err = followRun(cmd.OutOrStdout(), events)
	return err
}
