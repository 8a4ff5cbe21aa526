package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the archive cache",
	Long: `Downloaded archives are kept for reuse when keep_archives is enabled in config.yaml.

Examples:
  bepinstall cache
  bepinstall cache clear`,
	RunE: runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached archive",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	out := cmd.OutOrStdout()
	c := service.Cache()
	if c == nil {
		fmt.Fprintln(out, "Archive cache is disabled (keep_archives: false).")
		return nil
	}

	size, count, err := c.Size()
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}
	fmt.Fprintf(out, "%d archive(s), %s\n", count, humanize.Bytes(uint64(size)))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	c := service.Cache()
	if c == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Archive cache is disabled.")
		return nil
	}

	size, count, _ := c.Size()
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d archive(s), freed %s\n", count, humanize.Bytes(uint64(size)))
	return nil
}
