package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	installInit    bool
	installNoClean bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install BepInEx and the manifest's mods",
	Long: `Locate the game, fetch the manifest, then install the BepInEx package
followed by every mod it lists.

A failed mod is reported and skipped; the command then exits with code 2.
A failed BepInEx package stops the install.

Examples:
  bepinstall install
  bepinstall install --init
  bepinstall install --manifest ./mods.json`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installInit, "init", false, "launch the game once after installing BepInEx so it writes its config")
	installCmd.Flags().BoolVar(&installNoClean, "no-clean", false, "keep an existing BepInEx directory instead of removing it first")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	opts := service.DefaultInstallOptions()
	if cmd.Flags().Changed("init") {
		opts.InitLoader = installInit
	}
	if installNoClean {
		opts.CleanInstall = false
	}

	events, err := service.StartInstall(cmd.Context(), opts)
	if err != nil {
		return err
	}
	_, err = followRun(cmd.OutOrStdout(), events)
	return err
}
