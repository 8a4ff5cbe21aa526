package main

import (
	"fmt"

	"bepinstall/internal/tui"

	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the terminal interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := initService()
		if err != nil {
			return fmt.Errorf("initializing service: %w", err)
		}
		defer closeService(service)

		return tui.Run(service)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
